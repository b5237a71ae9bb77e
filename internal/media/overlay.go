package media

import (
	"strings"

	"storyview/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Composite draws overlays over a rendered frame of width x height cells.
// Overlay X/Y are percentages of the frame; later overlays draw on top.
func Composite(base string, overlays []model.Overlay, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w < width {
			lines[i] = ln + strings.Repeat(" ", width-w)
		} else if w > width {
			lines[i] = xansi.Cut(ln, 0, width)
		}
	}

	for _, o := range overlays {
		text := strings.TrimSpace(strings.ReplaceAll(o.Text, "\n", " "))
		if text == "" {
			continue
		}
		row := percentToCell(o.Y, height)
		col := percentToCell(o.X, width)
		avail := width - col
		if avail <= 0 {
			continue
		}
		if xansi.StringWidth(text) > avail {
			text = xansi.Truncate(text, avail, "")
		}
		tw := xansi.StringWidth(text)
		ln := lines[row]
		lines[row] = xansi.Cut(ln, 0, col) + overlayStyle(o).Render(text) + xansi.Cut(ln, col+tw, width)
	}
	return strings.Join(lines, "\n")
}

func percentToCell(p float64, n int) int {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	c := int(p / 100 * float64(n))
	if c >= n {
		c = n - 1
	}
	return c
}

func overlayStyle(o model.Overlay) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(o.Bold)
	if o.Color != "" {
		st = st.Foreground(lipgloss.Color(o.Color))
	}
	if o.Kind == model.OverlayKindSticker {
		st = st.Reverse(true)
	}
	return st
}
