package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/qrscan/internal/camera"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	content := m.buildStatusContent(styles, bg)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxWidth(m.width).
		Render(content)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)
	session := m.snapshot.Session

	var parts []string

	parts = append(parts, bg.Render("qrscan", styles.Logo))

	// Toggle button
	parts = append(parts, styles.Button.Render(m.buttonLabel()))

	// Scanning indicator: a code is visible in the most recent frame
	if m.snapshot.Active && session.Scanning {
		parts = append(parts, bg.Render("● SCANNING", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("● IDLE", styles.DangerText))
	}

	if m.snapshot.HasSession {
		state := session.State.String()
		parts = append(parts, styles.StateStyle(state).Render(state))
	}

	parts = append(parts,
		bg.Render("Codes:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(session.Codes)), styles.Text),
	)

	if !compact && m.snapshot.Active && session.Width > 0 {
		parts = append(parts,
			bg.Render(fmt.Sprintf("%dx%d", session.Width, session.Height), styles.FaintText),
		)
	}

	if session.Err != nil {
		parts = append(parts, bg.Render(describeCameraError(session.Err), styles.DangerText))
	}

	if m.flash != "" {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		parts = append(parts, bg.Render(m.flash, style))
	} else if m.notice != "" {
		parts = append(parts, bg.Render(m.notice, styles.InfoText))
	}

	return strings.Join(parts, sep)
}

// buttonLabel renders the toggle as the action it performs.
func (m Model) buttonLabel() string {
	return ternary(m.snapshot.Active, "[ Stop ]", "[ Scan ]")
}

// describeCameraError classifies an acquisition failure for the header.
func describeCameraError(err error) string {
	switch {
	case errors.Is(err, camera.ErrBusy):
		return "Camera in use by another qrscan"
	case errors.Is(err, camera.ErrUnavailable):
		return "Camera unavailable"
	default:
		return "Camera error: " + truncate(err.Error(), 40)
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"f", followLabel},
			{"j/k", "Scroll"},
			{"G", "Bottom"},
			{"esc", "Scanner"},
			{"?", "More"},
		}
	default:
		action := ternary(m.snapshot.Active, "Stop", "Scan")
		commands = []cmd{
			{"s", action},
			{"enter", "Copy"},
			{"j/k", "Navigate"},
			{"v", ternary(m.preview, "Hide preview", "Preview")},
			{"l", "Logs"},
			{"?", "More"},
			{"q", "Quit"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		MaxWidth(m.width).
		Padding(0, 1).
		Render(strings.Join(segments, sep))
}
