package tui

import (
	"strings"

	"github.com/atotto/clipboard"
)

// copyToClipboard is a variable so tests can capture copies without a
// system clipboard.
var copyToClipboard = func(s string) error {
	return clipboard.WriteAll(strings.ReplaceAll(s, "\r\n", "\n"))
}

// DeepLink is the command line that reopens the viewer on storyID.
func DeepLink(storyID string) string {
	return "storyview " + storyID
}
