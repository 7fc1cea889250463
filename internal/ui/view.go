package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/jotter/internal/item"
)

const timeLayout = "Jan 02 15:04"

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	styles := m.theme.Styles()

	header := m.renderHeader(styles)
	footer := m.renderFooter(styles)

	var formView string
	if m.formOpen {
		formView = styles.PaneFocus.Width(max(m.width-2, 1)).Render(m.form.view(styles, m.width-4))
	}

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if formView != "" {
		bodyHeight -= lipgloss.Height(formView)
	}
	bodyHeight = max(bodyHeight, 3)

	parts := []string{header, m.renderBody(styles, bodyHeight)}
	if formView != "" {
		parts = append(parts, formView)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(styles Styles) string {
	left := styles.Logo.Render("jotter") + styles.MutedText.Render(fmt.Sprintf("  %d items", len(m.snap.Items)))

	var status []string
	switch {
	case m.snap.IsLoading || m.busy:
		status = append(status, styles.AccentText.Render("working…"))
	case m.snap.IsOffline():
		status = append(status, styles.DangerText.Render("offline"))
	}
	if !m.snap.LastLoaded.IsZero() {
		status = append(status, styles.FaintText.Render("loaded "+m.snap.LastLoaded.Format("15:04:05")))
	}
	right := strings.Join(status, "  ")

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFooter(styles Styles) string {
	var line string
	switch {
	case m.flash != "" && m.flashErr:
		line = styles.DangerText.Render(truncate(m.flash, m.width-2))
	case m.flash != "":
		line = styles.SuccessText.Render(truncate(m.flash, m.width-2))
	case m.snap.LastError != nil:
		line = styles.WarningText.Render(truncate("Last error: "+m.snap.LastError.Error(), m.width-2))
	}

	keys := m.help.View(m.keys)
	if m.formOpen {
		keys = m.help.View(formKeyMap{m.keys})
	}
	if line == "" {
		return styles.Footer.Render(keys)
	}
	return lipgloss.JoinVertical(lipgloss.Left, styles.Footer.Render(line), styles.Footer.Render(keys))
}

func (m Model) renderBody(styles Styles, height int) string {
	if m.prefs.HideDetail || m.width < 60 {
		return m.renderList(styles, m.width, height)
	}
	listWidth := m.width * 2 / 5
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(styles, listWidth, height),
		m.renderDetail(styles, m.width-listWidth, height),
	)
}

func (m Model) renderList(styles Styles, width, height int) string {
	inner := max(width-4, 1)
	rows := max(height-2, 1)

	var lines []string
	if len(m.snap.Items) == 0 {
		msg := "No items yet. Press a to add one."
		if m.snap.LastLoaded.IsZero() && m.snap.LastError != nil {
			msg = "Could not reach the server. Press r to retry."
		}
		lines = append(lines, styles.FaintText.Render(truncate(msg, inner)))
	}

	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	for i := start; i < len(m.snap.Items) && i < start+rows; i++ {
		lines = append(lines, m.renderRow(styles, m.snap.Items[i], i == m.selected, inner))
	}

	pane := styles.PaneFocus
	if m.formOpen {
		pane = styles.Pane
	}
	return pane.Width(max(width-2, 1)).Height(rows).Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(styles Styles, it item.Item, selected bool, width int) string {
	stamp := it.UpdatedAt.Local().Format(timeLayout)
	titleWidth := max(width-len(stamp)-1, 1)
	title := padRight(truncate(it.Title, titleWidth), titleWidth)

	if edit, ok := m.snap.Editing(); ok && edit.Target == it.ID {
		title = padRight(truncate("✎ "+it.Title, titleWidth), titleWidth)
	}
	if selected {
		return styles.Selected.Render(title + " " + stamp)
	}
	return styles.Text.Render(title) + " " + styles.FaintText.Render(stamp)
}

func (m Model) renderDetail(styles Styles, width, height int) string {
	inner := max(width-4, 1)
	pane := styles.Pane.Width(max(width-2, 1)).Height(max(height-2, 1))

	it, ok := m.selectedItem()
	if !ok {
		return pane.Render(styles.FaintText.Render("Nothing selected"))
	}

	desc := it.Description
	if strings.TrimSpace(desc) == "" {
		desc = styles.FaintText.Render("(no description)")
	} else {
		desc = styles.Text.Width(inner).Render(desc)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Width(inner).Render(it.Title),
		"",
		desc,
		"",
		styles.Label.Render("Created")+styles.MutedText.Render(formatTime(it.CreatedAt)),
		styles.Label.Render("Updated")+styles.MutedText.Render(formatTime(it.UpdatedAt)),
		styles.Label.Render("ID")+styles.FaintText.Render(it.ID),
	)
	return pane.Render(body)
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.Header.Width(m.width).Render(
		styles.Logo.Render("jotter") + styles.MutedText.Render("  diagnostics  "+m.logPath),
	)
	hint := styles.Footer.Render("j/k scroll · g/G top/bottom · l/esc back · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.logView.View(), hint)
}

func renderLogLines(styles Styles, msg logLinesMsg) string {
	if msg.err != nil {
		return styles.DangerText.Render(msg.err.Error())
	}
	if len(msg.lines) == 0 {
		return styles.FaintText.Render("Log is empty")
	}
	out := make([]string, len(msg.lines))
	for i, line := range msg.lines {
		out[i] = styles.LevelStyle(line.Level).Render(line.Raw)
	}
	return strings.Join(out, "\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
