package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 80

	// LayoutSplitWidth is the minimum width to show preview and results side by side.
	LayoutSplitWidth = 100
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines to keep in memory.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// LogRefreshDebounce is the minimum time between log refreshes.
	LogRefreshDebounce = time.Second

	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = 100 * time.Millisecond

	// CopyFlashDuration is how long the copy confirmation stays in the header.
	CopyFlashDuration = 2 * time.Second

	// HotplugNoticeTTL is how long a camera connect or disconnect notice is shown.
	HotplugNoticeTTL = 15 * time.Second
)

// renderBox draws a rounded border of exactly width x height cells with
// title set into the top edge. Content lines are clipped or padded to fit.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}
	bgColor := m.theme.Surface
	borderColor := m.theme.Border
	if focused {
		bgColor = m.theme.FocusBg
		borderColor = m.theme.BorderFocus
	}
	bg := NewBgStyle(bgColor)
	border := lipgloss.NewStyle().
		Foreground(lipgloss.Color(borderColor)).
		Background(lipgloss.Color(bgColor))
	titleStyle := m.theme.Styles().WithBackground(bgColor).Text.Bold(true)
	inner := width - 2

	var b strings.Builder

	// Top edge: ╭─ Title ───╮
	top := border.Render("╭─")
	used := 1
	if title != "" {
		label := truncate(title, inner-3)
		top += bg.Space() + titleStyle.Render(label) + bg.Space()
		used += lipgloss.Width(label) + 2
	}
	if fill := inner - used; fill > 0 {
		top += border.Render(strings.Repeat("─", fill))
	}
	top += border.Render("╮")
	b.WriteString(top)
	b.WriteString("\n")

	lines := strings.Split(content, "\n")
	clipStyle := lipgloss.NewStyle().MaxWidth(inner)
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(lines) {
			line = clipStyle.Render(lines[i])
		}
		b.WriteString(border.Render("│"))
		b.WriteString(bg.FillLine(line, inner))
		b.WriteString(border.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(border.Render("╰" + strings.Repeat("─", inner) + "╯"))
	return b.String()
}
