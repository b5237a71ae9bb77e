package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws the reply field as exactly one line of width w.
func renderInputLine(w int, inputView string) string {
	if w < 10 {
		w = 10
	}

	// A newline or cursor styling overflow would wrap and look like a newline
	// was inserted while typing.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		w,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > w {
		// Terminate styling so the cut never bleeds into the next line.
		line = xansi.Cut(line, 0, w) + "\x1b[0m"
	}
	return line
}
