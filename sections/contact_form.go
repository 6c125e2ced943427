package sections

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HSouheill/portfolio_backend/models"
)

// ContactState is where the contact form is in its lifecycle
type ContactState string

const (
	ContactIdle    ContactState = "idle"
	ContactSending ContactState = "sending"
	ContactSuccess ContactState = "success"
	ContactError   ContactState = "error"
)

// DefaultContactResetDelay is how long success and error stay visible
const DefaultContactResetDelay = 5 * time.Second

// ErrFormBusy is returned when a submission is already in flight
var ErrFormBusy = errors.New("contact form is already sending")

// ContactForm sends a visitor's message and flips back to idle a fixed
// delay after the outcome is known. Fields are cleared on success and kept
// on failure so the visitor can resubmit.
type ContactForm struct {
	send       func(ctx context.Context, msg models.ContactMessage) error
	resetAfter time.Duration

	mu        sync.Mutex
	state     ContactState
	fields    models.ContactMessage
	timer     *time.Timer
	listeners []func(ContactState)
}

// NewContactForm creates an idle form. A non-positive resetAfter uses the default.
func NewContactForm(send func(ctx context.Context, msg models.ContactMessage) error, resetAfter time.Duration) *ContactForm {
	if resetAfter <= 0 {
		resetAfter = DefaultContactResetDelay
	}
	return &ContactForm{
		send:       send,
		resetAfter: resetAfter,
		state:      ContactIdle,
	}
}

// OnChange registers a listener called with every new state. Listeners run
// with the form locked and must not call back into it.
func (f *ContactForm) OnChange(fn func(ContactState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// SetFields replaces the visitor's input
func (f *ContactForm) SetFields(msg models.ContactMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = msg
}

// Fields returns the current input
func (f *ContactForm) Fields() models.ContactMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// State reports the current state
func (f *ContactForm) State() ContactState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ResetAfter is the delay before success or error returns to idle
func (f *ContactForm) ResetAfter() time.Duration {
	return f.resetAfter
}

// Submit sends the current fields. It returns the send error, if any, after
// the form has moved to the error state.
func (f *ContactForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == ContactSending {
		f.mu.Unlock()
		return ErrFormBusy
	}
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	msg := f.fields
	f.setStateLocked(ContactSending)
	f.mu.Unlock()

	err := f.send(ctx, msg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.setStateLocked(ContactError)
	} else {
		f.fields = models.ContactMessage{}
		f.setStateLocked(ContactSuccess)
	}
	f.timer = time.AfterFunc(f.resetAfter, f.reset)
	return err
}

// Stop cancels a pending reset
func (f *ContactForm) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *ContactForm) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == ContactSuccess || f.state == ContactError {
		f.timer = nil
		f.setStateLocked(ContactIdle)
	}
}

func (f *ContactForm) setStateLocked(state ContactState) {
	f.state = state
	for _, fn := range f.listeners {
		fn(state)
	}
}
