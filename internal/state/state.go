package state

import (
	"time"

	"github.com/five82/jotter/internal/item"
)

// Form is the pending title/description the user is typing.
type Form struct {
	Title       string
	Description string
}

// Input converts the form into a create request.
func (f Form) Input() item.Input {
	return item.Input{Title: f.Title, Description: f.Description}
}

// EditMode is either Idle or Editing. The unexported method seals the set.
type EditMode interface {
	isEditMode()
	form() Form
}

// Idle means the form creates a new item on submit.
type Idle struct {
	Draft Form
}

// Editing means the form replaces the fields of Target on submit.
type Editing struct {
	Target string
	Buffer Form
}

func (Idle) isEditMode()    {}
func (Editing) isEditMode() {}

func (m Idle) form() Form    { return m.Draft }
func (m Editing) form() Form { return m.Buffer }

// withForm returns mode with its form replaced, keeping the tag.
func withForm(mode EditMode, f Form) EditMode {
	switch m := mode.(type) {
	case Editing:
		m.Buffer = f
		return m
	default:
		return Idle{Draft: f}
	}
}

// State represents the latest data available to the client.
type State struct {
	Items               []item.Item
	Mode                EditMode
	IsLoading           bool
	LastLoaded          time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed loads
}

// Form returns the pending form, whichever mode is active.
func (s State) Form() Form {
	if s.Mode == nil {
		return Form{}
	}
	return s.Mode.form()
}

// Editing returns the active edit, if any.
func (s State) Editing() (Editing, bool) {
	e, ok := s.Mode.(Editing)
	return e, ok
}

// IsOffline returns true when the server has been unreachable for multiple loads.
func (s State) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// clone returns a copy that shares nothing mutable with s.
func (s State) clone() State {
	dup := s
	dup.Items = cloneItems(s.Items)
	return dup
}

func cloneItems(items []item.Item) []item.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]item.Item, len(items))
	copy(dup, items)
	return dup
}
