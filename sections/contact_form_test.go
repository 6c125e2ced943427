package sections

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/HSouheill/portfolio_backend/models"
)

type stateRecorder struct {
	mu     sync.Mutex
	states []ContactState
}

func (r *stateRecorder) record(s ContactState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) snapshot() []ContactState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ContactState(nil), r.states...)
}

var visitor = models.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

func TestContactFormSuccessClearsAndResets(t *testing.T) {
	defer goleak.VerifyNone(t)

	var sent []models.ContactMessage
	form := NewContactForm(func(ctx context.Context, msg models.ContactMessage) error {
		sent = append(sent, msg)
		return nil
	}, 20*time.Millisecond)
	rec := &stateRecorder{}
	form.OnChange(rec.record)

	form.SetFields(visitor)
	require.NoError(t, form.Submit(context.Background()))

	require.Len(t, sent, 1)
	assert.Equal(t, visitor, sent[0])
	assert.Equal(t, ContactSuccess, form.State())
	assert.Equal(t, models.ContactMessage{}, form.Fields())

	assert.Eventually(t, func() bool { return form.State() == ContactIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []ContactState{ContactSending, ContactSuccess, ContactIdle}, rec.snapshot())
}

func TestContactFormErrorKeepsFields(t *testing.T) {
	defer goleak.VerifyNone(t)

	sendErr := errors.New("smtp down")
	form := NewContactForm(func(ctx context.Context, msg models.ContactMessage) error {
		return sendErr
	}, 20*time.Millisecond)
	rec := &stateRecorder{}
	form.OnChange(rec.record)

	form.SetFields(visitor)
	err := form.Submit(context.Background())
	require.ErrorIs(t, err, sendErr)

	assert.Equal(t, ContactError, form.State())
	assert.Equal(t, visitor, form.Fields())

	assert.Eventually(t, func() bool { return form.State() == ContactIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, visitor, form.Fields(), "fields survive the reset")
	assert.Equal(t, []ContactState{ContactSending, ContactError, ContactIdle}, rec.snapshot())
}

func TestContactFormRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	form := NewContactForm(func(ctx context.Context, msg models.ContactMessage) error {
		close(started)
		<-release
		return nil
	}, time.Hour)
	defer form.Stop()

	done := make(chan error, 1)
	go func() { done <- form.Submit(context.Background()) }()
	<-started

	assert.Equal(t, ContactSending, form.State())
	assert.ErrorIs(t, form.Submit(context.Background()), ErrFormBusy)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, ContactSuccess, form.State())
}

func TestContactFormStopCancelsReset(t *testing.T) {
	defer goleak.VerifyNone(t)

	form := NewContactForm(func(ctx context.Context, msg models.ContactMessage) error {
		return nil
	}, 30*time.Millisecond)
	require.NoError(t, form.Submit(context.Background()))
	form.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, ContactSuccess, form.State())
}

func TestContactFormDefaultDelay(t *testing.T) {
	form := NewContactForm(nil, 0)
	assert.Equal(t, DefaultContactResetDelay, form.ResetAfter())
	assert.Equal(t, ContactIdle, form.State())
}
