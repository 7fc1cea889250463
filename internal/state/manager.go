package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/jotter/internal/item"
)

// DeletePrompt is the question passed to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this item?"

// ItemsAPI is the subset of item operations the manager drives.
// Both *client.Client and *service.Service implement it.
type ItemsAPI interface {
	List(ctx context.Context) ([]item.Item, error)
	Create(ctx context.Context, in item.Input) (item.Item, error)
	Update(ctx context.Context, id string, patch item.Patch) (item.Item, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// Manager owns the client-side item cache and the edit mode. It runs one
// server action at a time and resynchronizes with a full List after every
// successful mutation instead of patching the cache. Buffer edits are local
// and never wait for an action in flight.
type Manager struct {
	actionMu sync.Mutex // serializes Load, Submit and Remove

	mu    sync.RWMutex // guards state
	state State

	api     ItemsAPI
	confirm Confirmer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfirmer sets the capability asked before every delete.
func WithConfirmer(c Confirmer) Option {
	return func(m *Manager) { m.confirm = c }
}

// WithLogger sets the logger used for failed actions.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source for LastLoaded.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates an idle manager with an empty cache. Without a
// Confirmer every delete is declined.
func NewManager(api ItemsAPI, opts ...Option) *Manager {
	m := &Manager{
		api:    api,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		state:  State{Mode: Idle{}},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Load fetches the full list and replaces the cache. On failure the previous
// items are kept and the error is recorded.
func (m *Manager) Load(ctx context.Context) error {
	m.actionMu.Lock()
	defer m.actionMu.Unlock()
	return m.load(ctx)
}

func (m *Manager) load(ctx context.Context) error {
	m.update(func(s *State) { s.IsLoading = true })

	items, err := m.api.List(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsLoading = false
	if err != nil {
		m.state.LastError = err
		m.state.ConsecutiveFailures++
		m.logFailure("load items failed", err)
		return err
	}
	m.state.Items = cloneItems(items)
	m.state.LastLoaded = m.now()
	m.state.LastError = nil
	m.state.ConsecutiveFailures = 0
	return nil
}

// BeginEdit copies it into the buffer and targets it. Any pending buffer is
// discarded.
func (m *Manager) BeginEdit(it item.Item) {
	m.update(func(s *State) {
		s.Mode = Editing{
			Target: it.ID,
			Buffer: Form{Title: it.Title, Description: it.Description},
		}
	})
}

// Cancel returns to Idle with an empty form.
func (m *Manager) Cancel() {
	m.update(func(s *State) { s.Mode = Idle{} })
}

// SetForm replaces the pending form without changing the mode.
func (m *Manager) SetForm(f Form) {
	m.update(func(s *State) { s.Mode = withForm(s.Mode, f) })
}

// SetTitle replaces the pending title.
func (m *Manager) SetTitle(title string) {
	m.update(func(s *State) {
		f := s.Form()
		f.Title = title
		s.Mode = withForm(s.Mode, f)
	})
}

// SetDescription replaces the pending description.
func (m *Manager) SetDescription(desc string) {
	m.update(func(s *State) {
		f := s.Form()
		f.Description = desc
		s.Mode = withForm(s.Mode, f)
	})
}

// Submit updates the edit target when Editing, or creates a new item when
// Idle. On success the form is cleared, the mode returns to Idle unless it
// moved on while the request was in flight, and the cache is reloaded. On failure nothing changes except LastError, so the
// user can retry.
func (m *Manager) Submit(ctx context.Context) (item.Item, error) {
	m.actionMu.Lock()
	defer m.actionMu.Unlock()

	snap := m.Snapshot()
	form := snap.Form()

	var (
		saved item.Item
		err   error
	)
	if edit, ok := snap.Editing(); ok {
		saved, err = m.api.Update(ctx, edit.Target, item.PatchFrom(form.Input()))
	} else {
		saved, err = m.api.Create(ctx, form.Input())
	}
	if err != nil {
		m.update(func(s *State) { s.LastError = err })
		m.logFailure("submit failed", err)
		return item.Item{}, err
	}

	// Form edits do not wait for actionMu; keep a mode the user switched to
	// while the request was in flight.
	m.update(func(s *State) {
		if stillSubmitted(s.Mode, snap.Mode) {
			s.Mode = Idle{}
		}
	})
	_ = m.load(ctx)
	return saved, nil
}

// Remove asks the Confirmer and, when it agrees, deletes id and reloads.
// It reports whether the delete was attempted.
func (m *Manager) Remove(ctx context.Context, id string) (bool, error) {
	// Ask before taking the action lock: the prompt may wait on the same
	// event loop that issues other actions.
	if m.confirm == nil || !m.confirm(DeletePrompt) {
		return false, nil
	}

	m.actionMu.Lock()
	defer m.actionMu.Unlock()

	if err := m.api.Delete(ctx, id); err != nil {
		m.update(func(s *State) { s.LastError = err })
		m.logFailure("delete failed", err, "id", id)
		return true, err
	}

	m.update(func(s *State) {
		if edit, ok := s.Mode.(Editing); ok && edit.Target == id {
			s.Mode = Idle{}
		}
	})
	_ = m.load(ctx)
	return true, nil
}

// stillSubmitted reports whether current is the mode a Submit started from:
// the same edit target, or an untouched draft.
func stillSubmitted(current, submitted EditMode) bool {
	sub, wasEditing := submitted.(Editing)
	switch cur := current.(type) {
	case Editing:
		return wasEditing && cur.Target == sub.Target
	default:
		return !wasEditing && current.form() == submitted.form()
	}
}

func (m *Manager) update(fn func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
}

// logFailure logs rejected requests at info and everything else at warn.
func (m *Manager) logFailure(msg string, err error, attrs ...any) {
	level := slog.LevelWarn
	if errors.Is(err, item.ErrValidation) || errors.Is(err, item.ErrNotFound) {
		level = slog.LevelInfo
	}
	m.logger.Log(context.Background(), level, msg, append([]any{"error", err}, attrs...)...)
}
