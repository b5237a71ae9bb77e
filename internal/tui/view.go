package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"storyview/internal/media"
	"storyview/internal/model"
	"storyview/internal/story"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	segmentGap = 1
	chromeRows = 4 // segments, header, actions, minibuffer/help
)

func (m viewerModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	var out string
	switch m.session.Screen() {
	case story.ScreenLoading:
		out = m.viewMessage("Loading stories…", "")
	case story.ScreenLoadError:
		msg := "Couldn't load stories"
		if err := m.session.LoadErr(); err != nil {
			msg += "\n" + styleMuted().Render(err.Error())
		}
		out = m.viewMessage(lipgloss.NewStyle().Foreground(colorErrorFg).Render(msg), "r: retry   q: back")
	case story.ScreenNotFound:
		out = m.viewMessage("This story is no longer available", "q: back")
	case story.ScreenEmpty:
		out = m.viewMessage("No stories to show", "q: back")
	default:
		out = m.viewActive()
	}

	switch {
	case m.session.ConfirmingDelete() || m.session.Deleting():
		label := "Delete"
		if m.session.Deleting() {
			label = "Deleting…"
		}
		modal := renderConfirmModal(m.width, "Delete story",
			"Delete this story? It disappears for everyone who has not seen it yet.",
			label, "Cancel", m.confirmFocus)
		out = placeCentered(m.width, m.height, modal)
	case m.session.SheetState() != story.SheetClosed:
		out = placeCentered(m.width, m.height, m.viewSheet())
	case m.showHelp:
		h := m.help
		h.ShowAll = true
		out = placeCentered(m.width, m.height, renderModalBox(m.width, "Keys", h.View(m.activeKeys())+"\n\n"+styleMuted().Render("?/esc: close")))
	}
	return normalizePane(out, m.width, m.height)
}

func (m viewerModel) mediaRows() int { return maxInt(1, m.height-chromeRows) }

// actionRow is the screen row the action line is drawn on, below the
// segments, header and media frame.
func (m viewerModel) actionRow() int { return 2 + m.mediaRows() }

func (m viewerModel) viewMessage(msg, hint string) string {
	body := msg
	if hint != "" {
		body += "\n\n" + styleMuted().Render(hint)
	}
	return placeCentered(m.width, m.height, lipgloss.NewStyle().Align(lipgloss.Center).Render(body))
}

func (m viewerModel) viewActive() string {
	st, ok := m.session.Current()
	if !ok {
		return ""
	}
	now := m.now()
	mediaH := m.mediaRows()

	var frame string
	switch {
	case m.mediaErr != "":
		frame = placeCentered(m.width, mediaH, lipgloss.NewStyle().Foreground(colorErrorFg).Render("Media unavailable: "+m.mediaErr))
	case m.res == nil:
		frame = placeCentered(m.width, mediaH, styleMuted().Render("…"))
	default:
		frame = m.res.Render(m.width, mediaH)
	}
	frame = media.Composite(frame, st.Overlays, m.width, mediaH)

	footer := m.minibufferText
	if footer == "" {
		footer = m.help.ShortHelpView(m.activeKeys().ShortHelp())
	} else {
		footer = styleMuted().Render(footer)
	}

	return strings.Join([]string{
		renderSegments(m.session.Segments(), m.width),
		m.viewHeader(st, now),
		normalizePane(frame, m.width, mediaH),
		m.viewActions(st),
		footer,
	}, "\n")
}

func (m viewerModel) viewHeader(st model.Story, now time.Time) string {
	name := st.Author.Name
	if name == "" {
		name = st.AuthorID
	}
	if st.Author.Avatar != "" {
		name = st.Author.Avatar + " " + name
	}
	left := lipgloss.NewStyle().Bold(true).Foreground(colorHeaderFg).Render(name)
	meta := []string{story.SinceLabel(st.CreatedAt, now)}
	if !st.ExpiresAt.IsZero() && st.ExpiresAt.After(now) {
		meta = append(meta, humanize.RelTime(now, st.ExpiresAt, "", "left"))
	}
	if m.session.Paused() {
		meta = append(meta, "paused")
	}
	right := styleMuted().Render(strings.Join(meta, " · "))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m viewerModel) viewActions(st model.Story) string {
	if m.session.IsOwn() {
		return lipgloss.NewStyle().Bold(true).Render("👁 "+viewsLabel(st.Views)) +
			styleMuted().Render("  v: see who viewed   d: delete   n: new story")
	}
	if m.reply.Focused() {
		return renderInputLine(m.width, m.reply.View())
	}
	heart := "♡ like"
	if m.session.Liked(st.ID) {
		heart = lipgloss.NewStyle().Foreground(colorLiked).Render("♥ liked")
	}
	return styleMuted().Render("r: reply to "+firstNonEmpty(st.Author.Name, st.AuthorID)+"   ") + heart
}

// renderSegments draws one bar per story in the group; each ratio is a fill
// level between 0 and 1.
func renderSegments(ratios []float64, width int) string {
	n := len(ratios)
	if n == 0 || width <= 0 {
		return ""
	}
	segW := (width - segmentGap*(n-1)) / n
	if segW < 1 {
		segW = 1
	}
	filled := lipgloss.NewStyle().Foreground(colorSegment)
	track := lipgloss.NewStyle().Foreground(colorTrack)

	var b strings.Builder
	for i, r := range ratios {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", segmentGap))
		}
		full := int(math.Round(r * float64(segW)))
		if full > segW {
			full = segW
		}
		if full > 0 {
			b.WriteString(filled.Render(strings.Repeat("━", full)))
		}
		if full < segW {
			b.WriteString(track.Render(strings.Repeat("─", segW-full)))
		}
	}
	return b.String()
}

func viewsLabel(n int) string {
	if n == 1 {
		return "1 view"
	}
	return fmt.Sprintf("%s views", humanize.Comma(int64(n)))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
