package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/qrscan/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	entries     []logtail.Entry
	follow      bool
	lastRefresh time.Time
	err         error
}

type logLinesMsg struct {
	entries []logtail.Entry
	err     error
}

// refreshLogs tails the log file at most once per LogRefreshDebounce.
func (m *Model) refreshLogs(now time.Time) tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	if !m.logState.lastRefresh.IsZero() && now.Sub(m.logState.lastRefresh) < LogRefreshDebounce {
		return nil
	}
	m.logState.lastRefresh = now
	path := m.logPath
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, LogBufferLimit)
		return logLinesMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.updateLogViewport()
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 0), max(m.height-5, 0))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}

	// Box height = m.height - 3 (header, cmdbar, status bar below)
	// Box inner = box height - 2 (top and bottom borders) = m.height - 5
	m.logViewport.Width = max(m.width-4, 0)
	m.logViewport.Height = max(m.height-5, 0)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	m.logViewport.SetContent(m.renderLogContent())

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs(time.Now())
		}
	case key.Matches(msg, m.keys.Down):
		m.logState.follow = false
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logState.follow = false
		m.logViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logState.follow = false
		m.logViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logState.follow = false
		m.logViewport.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.logState.follow = false
		m.logViewport.PageUp()
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
	}
	return m, nil
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	// Logs view is always focused when shown, so use FocusBg
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	contentHeight := m.height - 3 // header + cmdbar + status bar below

	box := m.renderBox("Log", m.logViewport.View(), m.width, contentHeight, true)
	return box + "\n" + m.renderLogStatus(styles, bg)
}

// renderLogStatus renders the log status bar.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.logState.err != nil {
		return bg.Render("log unavailable: "+truncate(m.logState.err.Error(), 60), styles.DangerText)
	}

	autoTail := ternary(m.logState.follow, "on", "off")
	status := fmt.Sprintf("%d lines auto-tail %s", len(m.logState.entries), autoTail)

	parts := []string{bg.Render(status, styles.FaintText)}
	if m.logPath != "" {
		parts = append(parts, bg.Render(truncateMiddle(m.logPath, 50), styles.AccentText))
	}

	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return strings.Join(parts, sep)
}

// renderLogContent renders the colorized log lines.
func (m Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)

	if len(m.logState.entries) == 0 {
		if m.logPath == "" {
			return bg.Render("Logging to a file is disabled", styles.FaintText)
		}
		return bg.Render("No log lines yet", styles.FaintText)
	}

	width := m.logViewport.Width
	lines := make([]string, 0, len(m.logState.entries))
	for i, entry := range m.logState.entries {
		prefix := fmt.Sprintf("%4d │ ", i+1)
		text := logtail.Format(entry)
		if width > 0 {
			text = truncate(text, width-lipgloss.Width(prefix))
		}
		lines = append(lines,
			styles.FaintText.Render(prefix)+levelStyle(styles, entry.Level).Render(text))
	}
	return strings.Join(lines, "\n")
}

// levelStyle colors a log line by its level.
func levelStyle(styles Styles, level string) lipgloss.Style {
	switch level {
	case "error":
		return styles.DangerText
	case "warn", "warning":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	default:
		return styles.Text
	}
}
