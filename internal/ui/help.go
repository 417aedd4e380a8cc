package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title    string
	bindings []helpItem
}

type helpItem struct {
	key  string
	desc string
}

// helpSections builds the overlay from the key map so the two never drift.
func (m Model) helpSections() []helpSection {
	group := func(title string, bindings ...key.Binding) helpSection {
		s := helpSection{title: title}
		for _, b := range bindings {
			h := b.Help()
			s.bindings = append(s.bindings, helpItem{key: h.Key, desc: h.Desc})
		}
		return s
	}
	k := m.keys
	return []helpSection{
		group("Scanner", k.Toggle, k.Copy, k.TogglePreview, k.ViewLogs),
		group("Navigation", k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp),
		group("Logs", k.ToggleFollow, k.Escape),
		group("General", k.CycleTheme, k.Help, k.Quit),
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	sections := m.helpSections()
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.bindings {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
