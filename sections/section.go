// Package sections holds the state machines behind the portfolio's content
// sections and its contact form.
//
// A Section fetches one document or collection, falls back to fixed content
// when the fetch fails, and lets the editor move it into an editing state
// whose draft is written back through a save function. Viewers that are not
// the editor can never reach a write.
package sections

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/repositories"
)

// State is where a section is in its lifecycle
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
	StateEditing State = "editing"
)

// Fallback reasons reported in a View
const (
	ReasonNotFound    = "not_found"
	ReasonUnavailable = "unavailable"
)

var (
	ErrNotEditor  = errors.New("viewer is not the editor")
	ErrNotReady   = errors.New("section is not ready")
	ErrNotEditing = errors.New("section is not being edited")
)

// Viewer is whoever is looking at the page
type Viewer struct {
	Session *models.Session
	Editor  bool
}

// Anonymous is a signed-out visitor
var Anonymous = Viewer{}

// Options configures a section
type Options[T, F any] struct {
	Name     string
	Fallback T
	Fetch    func(ctx context.Context) (T, error)
	Save     func(ctx context.Context, draft F) error
}

// View is the renderable snapshot of a section
type View[T, F any] struct {
	Name     string `json:"name"`
	State    State  `json:"state"`
	Data     T      `json:"data"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
	Editable bool   `json:"editable"`
	Draft    *F     `json:"draft,omitempty"`
}

// Section is one independently loaded part of the page
type Section[T, F any] struct {
	opts   Options[T, F]
	viewer Viewer

	mu       sync.Mutex
	state    State
	data     T
	draft    F
	fallback bool
	reason   string
	lastErr  error
}

// New creates a section in the loading state for the given viewer
func New[T, F any](opts Options[T, F], viewer Viewer) *Section[T, F] {
	return &Section[T, F]{
		opts:   opts,
		viewer: viewer,
		state:  StateLoading,
		data:   opts.Fallback,
	}
}

// Load fetches the section's content. A missing document leaves the section
// ready with its fallback; any other failure moves it to the error state,
// still showing the fallback.
func (s *Section[T, F]) Load(ctx context.Context) View[T, F] {
	data, err := s.opts.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyFetch(data, err)
	return s.viewLocked()
}

func (s *Section[T, F]) applyFetch(data T, err error) {
	switch {
	case err == nil:
		s.state = StateReady
		s.data = data
		s.fallback = false
		s.reason = ""
		s.lastErr = nil
	case errors.Is(err, repositories.ErrNotFound):
		s.state = StateReady
		s.data = s.opts.Fallback
		s.fallback = true
		s.reason = ReasonNotFound
		s.lastErr = nil
	default:
		s.state = StateError
		s.data = s.opts.Fallback
		s.fallback = true
		s.reason = ReasonUnavailable
		s.lastErr = err
	}
}

// BeginEdit moves a ready section into editing, seeding the draft from the
// current data
func (s *Section[T, F]) BeginEdit(seed func(T) F) error {
	if !s.viewer.Editor {
		return ErrNotEditor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return fmt.Errorf("%w: %s is %s", ErrNotReady, s.opts.Name, s.state)
	}
	s.draft = seed(s.data)
	s.state = StateEditing
	return nil
}

// SetDraft replaces the local form state. It is applied before any write is
// confirmed and is not rolled back if the write fails.
func (s *Section[T, F]) SetDraft(draft F) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.draft = draft
	return nil
}

// Save writes the draft. On success the section re-fetches and returns to
// ready. On failure it stays in editing with the draft intact.
func (s *Section[T, F]) Save(ctx context.Context) error {
	if !s.viewer.Editor {
		return ErrNotEditor
	}

	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	draft := s.draft
	s.mu.Unlock()

	if err := s.opts.Save(ctx, draft); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return fmt.Errorf("saving %s: %w", s.opts.Name, err)
	}

	s.reload(ctx)
	return nil
}

// Cancel drops the draft and returns to ready
func (s *Section[T, F]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEditing {
		var zero F
		s.draft = zero
		s.state = StateReady
	}
}

// Perform runs a one-shot editor write, such as a delete, then re-fetches
func (s *Section[T, F]) Perform(ctx context.Context, op func(ctx context.Context) error) error {
	if !s.viewer.Editor {
		return ErrNotEditor
	}
	if err := op(ctx); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return fmt.Errorf("updating %s: %w", s.opts.Name, err)
	}
	s.reload(ctx)
	return nil
}

func (s *Section[T, F]) reload(ctx context.Context) {
	data, err := s.opts.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	var zero F
	s.draft = zero
	s.applyFetch(data, err)
}

// State reports the current state
func (s *Section[T, F]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the failure behind the last fetch or write, if any
func (s *Section[T, F]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Draft returns the current local form state
func (s *Section[T, F]) Draft() F {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// View snapshots the section for rendering
func (s *Section[T, F]) View() View[T, F] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Section[T, F]) viewLocked() View[T, F] {
	v := View[T, F]{
		Name:     s.opts.Name,
		State:    s.state,
		Data:     s.data,
		Fallback: s.fallback,
		Reason:   s.reason,
		Editable: s.viewer.Editor,
	}
	if s.state == StateEditing {
		draft := s.draft
		v.Draft = &draft
	}
	return v
}
