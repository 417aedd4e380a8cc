package ui

import (
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"github.com/five82/qrscan/internal/scan"
)

// luminanceRamp maps dark to light.
const luminanceRamp = " .:-=+*#%@"

// cornerMarker marks a detected QR corner in the preview.
const cornerMarker = '◉'

// renderASCII draws img as at most cols x rows characters, keeping the
// aspect ratio of a terminal cell that is twice as tall as it is wide.
// Detection points, in image coordinates, are overlaid as corner markers.
func renderASCII(img image.Image, cols, rows int, points []image.Point) []string {
	if img == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil
	}
	w, h := fitCells(bounds.Dx(), bounds.Dy(), cols, rows)
	small := imaging.Resize(imaging.Grayscale(img), w, h, imaging.Box)

	grid := make([][]rune, h)
	for y := 0; y < h; y++ {
		row := make([]rune, w)
		for x := 0; x < w; x++ {
			row[x] = rampRune(small.NRGBAAt(x, y).R)
		}
		grid[y] = row
	}
	for _, p := range points {
		x := (p.X - bounds.Min.X) * w / bounds.Dx()
		y := (p.Y - bounds.Min.Y) * h / bounds.Dy()
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		grid[y][x] = cornerMarker
	}

	lines := make([]string, h)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return lines
}

func fitCells(imgW, imgH, cols, rows int) (int, int) {
	w := cols
	h := int(math.Round(float64(w) * float64(imgH) / (2 * float64(imgW))))
	if h > rows {
		h = rows
		w = int(math.Round(float64(h) * 2 * float64(imgW) / float64(imgH)))
	}
	w = min(max(w, 1), cols)
	h = min(max(h, 1), rows)
	return w, h
}

func rampRune(luma uint8) rune {
	return rune(luminanceRamp[int(luma)*(len(luminanceRamp)-1)/255])
}

// previewContent renders the preview box body.
func (m Model) previewContent(cols, rows int) string {
	session := m.snapshot.Session
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	if session.Preview == nil {
		msg := "Scanner off"
		switch {
		case session.Err != nil:
			msg = "No camera"
		case m.snapshot.Active:
			msg = "Waiting for frames..."
		}
		return styles.FaintText.Render(msg)
	}

	lines := renderASCII(session.Preview, cols, rows, session.Points)
	pad := (cols - lipgloss.Width(firstLine(lines))) / 2
	indent := NewBgStyle(m.theme.Surface).Spaces(max(pad, 0))
	marker := styles.SuccessText.Render(string(cornerMarker))
	if !session.Scanning {
		marker = styles.WarningText.Render(string(cornerMarker))
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		parts := strings.Split(line, string(cornerMarker))
		for j, part := range parts {
			parts[j] = styles.Text.Render(part)
		}
		out[i] = indent + strings.Join(parts, marker)
	}
	return strings.Join(out, "\n")
}

func (m Model) previewTitle() string {
	session := m.snapshot.Session
	if session.Width > 0 && session.State == scan.StateLooping {
		return "Preview " + itoa(session.Width) + "x" + itoa(session.Height)
	}
	return "Preview"
}

func firstLine(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}
