package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/qrscan/internal/clip"
	"github.com/five82/qrscan/internal/hotplug"
	"github.com/five82/qrscan/internal/logging"
	"github.com/five82/qrscan/internal/prefs"
	"github.com/five82/qrscan/internal/scan"
)

// View represents the current active view.
type View int

const (
	ViewScan View = iota
	ViewLogs
)

// Scanner is the slice of scan.Controller the UI drives.
type Scanner interface {
	Toggle() bool
	Snapshot() scan.ControllerSnapshot
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Scanner   Scanner
	Clipboard clip.Writer
	Tick      time.Duration
	ThemeName string
	Preview   bool
	PrefsPath string
	LogPath   string
	// Hotplug returns the latest camera hotplug event, if any.
	Hotplug func() (hotplug.Event, bool)
	Logger  *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	scanner   Scanner
	clipboard clip.Writer
	prefsPath string
	logPath   string
	hotplug   func() (hotplug.Event, bool)
	logger    *slog.Logger
	tick      time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	preview     bool

	// Data state
	snapshot    scan.ControllerSnapshot
	lastUpdated time.Time
	selected    int

	// Transient messages
	flash      string
	flashErr   bool
	flashUntil time.Time
	notice     string

	// Log state
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Default().Theme
	}

	board := opts.Clipboard
	if board == nil {
		board = clip.System{}
	}

	return Model{
		ctx:         ctx,
		scanner:     opts.Scanner,
		clipboard:   board,
		prefsPath:   opts.PrefsPath,
		logPath:     opts.LogPath,
		hotplug:     opts.Hotplug,
		logger:      logging.NewComponentLogger(opts.Logger, "ui"),
		tick:        tick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewScan,
		preview:     opts.Preview,
		logState:    logState{follow: true},
	}
}

// Message types
type (
	tickMsg       time.Time
	snapshotMsg   scan.ControllerSnapshot
	toggledMsg    struct{ active bool }
	copyResultMsg struct {
		text string
		err  error
	}
)

// tickCmd returns a command that sends a tick after the interval.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchSnapshotCmd returns a command that reads the scanner state.
func fetchSnapshotCmd(s Scanner) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(s.Snapshot())
	}
}

// toggleCmd flips scanning off the UI goroutine; unmounting joins the frame loop.
func toggleCmd(s Scanner) tea.Cmd {
	return func() tea.Msg {
		return toggledMsg{active: s.Toggle()}
	}
}

// copyCmd writes text to the clipboard.
func copyCmd(w clip.Writer, text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{text: text, err: w.WriteText(text)}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.tick),
	}
	if m.scanner != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.scanner))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = liveOnly(scan.ControllerSnapshot(msg))
		m.lastUpdated = time.Now()
		m.clampSelection()
		return m, nil

	case toggledMsg:
		m.snapshot.Active = msg.active
		m.snapshot = liveOnly(m.snapshot)
		m.selected = 0
		m.logger.Debug("scanning toggled",
			logging.Bool("active", msg.active),
		)
		if m.scanner == nil {
			return m, nil
		}
		return m, fetchSnapshotCmd(m.scanner)

	case copyResultMsg:
		m.handleCopyResult(msg)
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewScan
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewScan
			return m, nil
		}
		m.currentView = ViewLogs
		m.logState.lastRefresh = time.Time{}
		return m, m.refreshLogs(time.Now())
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleScanKey(msg)
	}
}

// handleScanKey processes keyboard input for the scanner view.
func (m Model) handleScanKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.codes())

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if m.scanner == nil {
			return m, nil
		}
		return m, toggleCmd(m.scanner)

	case key.Matches(msg, m.keys.TogglePreview):
		m.preview = !m.preview
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		text, ok := m.selectedCode()
		if !ok {
			return m, nil
		}
		return m, copyCmd(m.clipboard, text)

	case key.Matches(msg, m.keys.Down):
		if m.selected < count-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		if count > 0 {
			m.selected = count - 1
		}
	case key.Matches(msg, m.keys.PageDown, m.keys.HalfPageDown):
		m.selected += m.listPage()
		m.clampSelection()
	case key.Matches(msg, m.keys.PageUp, m.keys.HalfPageUp):
		m.selected -= m.listPage()
		m.clampSelection()
	}

	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.scanner != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.scanner))
	}

	if m.flash != "" && now.After(m.flashUntil) {
		m.flash = ""
		m.flashErr = false
	}

	m.notice = ""
	if m.hotplug != nil {
		if ev, ok := m.hotplug(); ok && now.Sub(ev.At) < HotplugNoticeTTL {
			m.notice = ev.Notice()
		}
	}

	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(now); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tickCmd(m.tick))
	return m, tea.Batch(cmds...)
}

func (m *Model) handleCopyResult(msg copyResultMsg) {
	m.flashUntil = time.Now().Add(CopyFlashDuration)
	if msg.err != nil {
		m.flash = "copy failed: " + msg.err.Error()
		m.flashErr = true
		m.logger.Warn("clipboard write failed",
			logging.Error(msg.err),
			logging.String(logging.FieldEventType, "copy_failed"),
			logging.String(logging.FieldErrorHint, "install xclip, xsel or wl-clipboard"),
		)
		return
	}
	m.flash = fmt.Sprintf("copied: %s", truncate(msg.text, 40))
	m.flashErr = false
	m.logger.Info("code copied",
		logging.String(logging.FieldEventType, "code_copied"),
		logging.Int("length", len(msg.text)),
	)
}

// savePrefs persists the theme and preview choices.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Preview: m.preview}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save preferences failed", logging.Error(err))
	}
}

// liveOnly drops session state once scanning stops; detected codes live
// only as long as the scan.
func liveOnly(snap scan.ControllerSnapshot) scan.ControllerSnapshot {
	if snap.Active {
		return snap
	}
	return scan.ControllerSnapshot{}
}

func (m Model) codes() []string {
	if !m.snapshot.Active {
		return nil
	}
	return m.snapshot.Session.Codes
}

func (m Model) selectedCode() (string, bool) {
	codes := m.codes()
	if m.selected < 0 || m.selected >= len(codes) {
		return "", false
	}
	return codes[m.selected], true
}

func (m *Model) clampSelection() {
	count := len(m.codes())
	if m.selected >= count {
		m.selected = count - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// listPage is the paging step for the result list.
func (m Model) listPage() int {
	_, listHeight := m.listBoxSize()
	if page := (listHeight - 2) / 2; page > 1 {
		return page
	}
	return 1
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the active view below the header.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderScan()
	}
}

// Run launches the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		// Cancellation is a normal shutdown.
		return nil
	}
	return err
}
