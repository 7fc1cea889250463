package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/jotter/internal/item"
	"github.com/five82/jotter/internal/logtail"
	"github.com/five82/jotter/internal/prefs"
	"github.com/five82/jotter/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Manager   *state.Manager
	Confirm   *ConfirmBridge // attached to the program by Run
	LogPath   string         // client log shown in the diagnostics view
	Prefs     prefs.Prefs
	PrefsPath string
	Tick      time.Duration
	Logger    *slog.Logger
}

const (
	defaultTick  = time.Second
	logTailLines = 500
)

type action int

const (
	actionLoad action = iota
	actionSubmit
	actionRemove
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	manager   *state.Manager
	logPath   string
	prefsPath string
	prefs     prefs.Prefs
	tick      time.Duration
	logger    *slog.Logger

	// UI state
	keys   keyMap
	help   help.Model
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	snap     state.State
	selected int
	busy     bool // an action is in flight
	flash    string
	flashErr bool

	// Form state
	form     itemForm
	formOpen bool

	// Overlays
	modal    Modal
	showHelp bool
	showLogs bool
	logView  viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Default()
	}

	m := Model{
		ctx:       ctx,
		manager:   opts.Manager,
		logPath:   opts.LogPath,
		prefsPath: opts.PrefsPath,
		prefs:     p,
		tick:      tick,
		logger:    logger,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		theme:     GetTheme(p.Theme),
		form:      newItemForm(),
		logView:   viewport.New(0, 0),
	}
	if m.manager != nil {
		m.snap = m.manager.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadCmd(m.ctx, m.manager),
		tickCmd(m.tick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logView.Width = msg.Width
		m.logView.Height = max(msg.Height-2, 1)
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{snapshotCmd(m.manager), tickCmd(m.tick)}
		if m.showLogs {
			cmds = append(cmds, loadLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.setSnapshot(state.State(msg))
		return m, nil

	case confirmRequestMsg:
		detail := ""
		if it, ok := m.selectedItem(); ok {
			detail = it.Title
		}
		m.modal = confirmModal{prompt: msg.prompt, reply: msg.reply, detail: detail}
		return m, nil

	case actionDoneMsg:
		m.handleActionDone(msg)
		return m, nil

	case logLinesMsg:
		m.setLogLines(msg)
		return m, nil
	}

	// Cursor blink and other input plumbing.
	if m.formOpen {
		return m, m.form.update(msg)
	}
	return m, nil
}

// handleKey routes keys to the topmost overlay, then the form, then the list.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.formOpen {
		return m.handleFormKey(msg)
	}

	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSplit):
		m.prefs.HideDetail = !m.prefs.HideDetail
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = true
		return m, loadLogsCmd(m.logPath)

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.snap.Items)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.selected = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(len(m.snap.Items)-1, 0)
		return m, nil
	}

	if m.busy || m.manager == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Reload):
		m.busy = true
		return m, loadCmd(m.ctx, m.manager)

	case key.Matches(msg, m.keys.Add):
		m.manager.Cancel()
		m.formOpen = true
		return m, m.form.open(state.Form{}, false)

	case key.Matches(msg, m.keys.Edit):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.manager.BeginEdit(it)
		m.formOpen = true
		return m, m.form.open(m.manager.Snapshot().Form(), true)

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, removeCmd(m.ctx, m.manager, it.ID)
	}

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.manager.Cancel()
		m.closeForm()
		m.snap = m.manager.Snapshot()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, submitCmd(m.ctx, m.manager)

	case key.Matches(msg, m.keys.NextField):
		return m, m.form.nextField()
	}

	if m.busy {
		return m, nil
	}
	cmd := m.form.update(msg)
	m.manager.SetForm(m.form.value())
	return m, cmd
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleLogs), key.Matches(msg, m.keys.Cancel):
		m.showLogs = false
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logView.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *Model) handleActionDone(msg actionDoneMsg) {
	m.busy = false
	m.setSnapshot(m.manager.Snapshot())

	switch msg.action {
	case actionLoad:
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("Reload failed: %v", msg.err), true)
		} else {
			m.setFlash("", false)
		}

	case actionSubmit:
		if msg.err != nil {
			m.setFlash(describeError("Save", msg.err), true)
			return
		}
		m.closeForm()
		m.selectID(msg.item.ID)
		m.setFlash(fmt.Sprintf("Saved %q", truncate(msg.item.Title, 40)), false)

	case actionRemove:
		switch {
		case !msg.attempted:
			m.setFlash("Delete cancelled", false)
		case msg.err != nil:
			m.setFlash(describeError("Delete", msg.err), true)
		default:
			m.setFlash("Deleted", false)
		}
	}
}

// describeError keeps domain errors short and labels everything else as a
// connection problem.
func describeError(verb string, err error) string {
	switch {
	case errors.Is(err, item.ErrValidation), errors.Is(err, item.ErrNotFound):
		return fmt.Sprintf("%s rejected: %v", verb, err)
	default:
		return fmt.Sprintf("%s failed: %v", verb, err)
	}
}

func (m *Model) setSnapshot(s state.State) {
	m.snap = s
	if m.selected >= len(s.Items) {
		m.selected = max(len(s.Items)-1, 0)
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m *Model) closeForm() {
	m.formOpen = false
	m.form.close()
}

func (m *Model) selectID(id string) {
	for i, it := range m.snap.Items {
		if it.ID == id {
			m.selected = i
			return
		}
	}
}

func (m Model) selectedItem() (item.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.snap.Items) {
		return item.Item{}, false
	}
	return m.snap.Items[m.selected], true
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

func (m *Model) setLogLines(msg logLinesMsg) {
	atBottom := m.logView.AtBottom()
	m.logView.SetContent(renderLogLines(m.theme.Styles(), msg))
	if atBottom {
		m.logView.GotoBottom()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.State

type actionDoneMsg struct {
	action    action
	item      item.Item
	attempted bool
	err       error
}

type logLinesMsg struct {
	lines []logtail.Line
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func snapshotCmd(mgr *state.Manager) tea.Cmd {
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(mgr.Snapshot())
	}
}

func loadCmd(ctx context.Context, mgr *state.Manager) tea.Cmd {
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		return actionDoneMsg{action: actionLoad, err: mgr.Load(ctx)}
	}
}

func submitCmd(ctx context.Context, mgr *state.Manager) tea.Cmd {
	return func() tea.Msg {
		saved, err := mgr.Submit(ctx)
		return actionDoneMsg{action: actionSubmit, item: saved, err: err}
	}
}

func removeCmd(ctx context.Context, mgr *state.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		attempted, err := mgr.Remove(ctx, id)
		return actionDoneMsg{action: actionRemove, attempted: attempted, err: err}
	}
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
		opts.Context = ctx
	}

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if opts.Confirm != nil {
		opts.Confirm.attach(p)
		defer opts.Confirm.close()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
