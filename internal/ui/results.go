package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/qrscan/internal/scan"
)

// renderScan lays out the preview and result boxes below the header.
func (m Model) renderScan() string {
	listW, listH := m.listBoxSize()
	list := m.renderBox(
		fmt.Sprintf("Codes (%d)", len(m.codes())),
		m.resultsContent(listW-2, listH-2),
		listW, listH, true,
	)
	if !m.preview {
		return list
	}

	prevW, prevH := m.previewBoxSize()
	preview := m.renderBox(m.previewTitle(), m.previewContent(prevW-2, prevH-2), prevW, prevH, false)
	if m.splitLayout() {
		return lipgloss.JoinHorizontal(lipgloss.Top, preview, list)
	}
	return lipgloss.JoinVertical(lipgloss.Left, preview, list)
}

func (m Model) contentHeight() int {
	return max(m.height-2, 0)
}

func (m Model) splitLayout() bool {
	return m.width >= LayoutSplitWidth
}

// previewBoxSize returns the preview box dimensions for the current layout.
func (m Model) previewBoxSize() (int, int) {
	if !m.preview {
		return 0, 0
	}
	if m.splitLayout() {
		return m.width * 3 / 5, m.contentHeight()
	}
	return m.width, m.contentHeight() / 2
}

// listBoxSize returns the result box dimensions for the current layout.
func (m Model) listBoxSize() (int, int) {
	if !m.preview {
		return m.width, m.contentHeight()
	}
	prevW, prevH := m.previewBoxSize()
	if m.splitLayout() {
		return m.width - prevW, m.contentHeight()
	}
	return m.width, m.contentHeight() - prevH
}

// resultsContent renders the ordered code list, scrolled to keep the
// selection visible.
func (m Model) resultsContent(width, rows int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	codes := m.codes()
	if len(codes) == 0 {
		return styles.FaintText.Render(m.emptyHint())
	}
	if rows <= 0 || width <= 0 {
		return ""
	}

	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	end := min(start+rows, len(codes))

	numWidth := len(strconv.Itoa(len(codes)))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		num := fmt.Sprintf("%*d ", numWidth, i+1)
		text := truncate(singleLine(codes[i]), width-len(num))
		if i == m.selected {
			lines = append(lines, styles.Selected.Render(padRight(num+text, width)))
			continue
		}
		lines = append(lines, styles.FaintText.Render(num)+styles.Text.Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) emptyHint() string {
	session := m.snapshot.Session
	switch {
	case session.Err != nil:
		return "Camera unavailable. Toggle with s to try again."
	case m.snapshot.Active && session.State == scan.StateAcquiring:
		return "Waiting for camera access..."
	case m.snapshot.Active:
		return "Point the camera at a QR code"
	default:
		return "Press s to start scanning"
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
