package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal answers a confirmRequestMsg with y or n.
type confirmModal struct {
	prompt string
	reply  chan<- bool
	detail string // title of the item in question
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Yes):
		c.answer(true)
		return c, nil, true
	case key.Matches(keyMsg, keys.No), keyMsg.String() == "ctrl+c":
		c.answer(false)
		return c, nil, true
	}
	return c, nil, false
}

// answer never blocks; the reply channel is buffered and answered once.
func (c confirmModal) answer(yes bool) {
	select {
	case c.reply <- yes:
	default:
	}
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Bold(true).Render(c.prompt)
	if c.detail != "" {
		body += "\n\n" + styles.AccentText.Render(truncate(c.detail, 40))
	}
	body += "\n\n" + styles.WarningText.Render("y") + styles.MutedText.Render(" delete   ") +
		styles.WarningText.Render("n") + styles.MutedText.Render(" keep")

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		styles.Modal.Width(48).Render(body),
		lipgloss.WithWhitespaceChars(" "),
	)
}
