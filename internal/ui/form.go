package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/jotter/internal/item"
	"github.com/five82/jotter/internal/state"
)

// itemForm is the inline title/description editor.
type itemForm struct {
	inputs   [2]textinput.Model // title, description
	focusIdx int
	editing  bool // false when adding
}

func newItemForm() itemForm {
	var f itemForm
	placeholders := [2]string{"Title", "Description"}
	limits := [2]int{item.MaxTitleLen, item.MaxDescriptionLen}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Prompt = ""
		f.inputs[i] = ti
	}
	return f
}

// open fills the inputs from the manager's form and focuses the title.
func (f *itemForm) open(form state.Form, editing bool) tea.Cmd {
	f.editing = editing
	f.inputs[0].SetValue(form.Title)
	f.inputs[1].SetValue(form.Description)
	f.inputs[0].CursorEnd()
	f.inputs[1].CursorEnd()
	f.focusIdx = 0
	f.inputs[1].Blur()
	return f.inputs[0].Focus()
}

func (f *itemForm) close() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *itemForm) nextField() tea.Cmd {
	f.inputs[f.focusIdx].Blur()
	f.focusIdx = (f.focusIdx + 1) % len(f.inputs)
	return f.inputs[f.focusIdx].Focus()
}

// update forwards msg to the focused input.
func (f *itemForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focusIdx], cmd = f.inputs[f.focusIdx].Update(msg)
	return cmd
}

func (f itemForm) value() state.Form {
	return state.Form{
		Title:       f.inputs[0].Value(),
		Description: f.inputs[1].Value(),
	}
}

func (f itemForm) view(styles Styles, width int) string {
	heading := "New item"
	if f.editing {
		heading = "Edit item"
	}
	labels := [2]string{"Title", "Details"}

	inputWidth := width - 16
	if inputWidth < 10 {
		inputWidth = 10
	}

	rows := []string{styles.AccentText.Bold(true).Render(heading)}
	for i := range f.inputs {
		in := f.inputs[i]
		in.Width = inputWidth
		label := styles.Label.Render(labels[i])
		if i == f.focusIdx {
			label = styles.WarningText.Width(10).Render(labels[i])
		}
		rows = append(rows, label+in.View())
	}
	if f.value().Title == "" {
		rows = append(rows, styles.FaintText.Render("Title is required"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
