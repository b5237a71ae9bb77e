package tui

import (
	"time"

	"storyview/internal/story"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// pixelPoint maps a terminal cell to the center of its virtual pixel box.
func (m viewerModel) pixelPoint(x, y int) story.Point {
	cw, ch := float64(m.opts.CellWidth), float64(m.opts.CellHeight)
	return story.Point{X: float64(x)*cw + cw/2, Y: float64(y)*ch + ch/2}
}

func (m viewerModel) pixelWidth() float64 {
	return float64(m.width * m.opts.CellWidth)
}

func (m viewerModel) overlayOpen() bool {
	return m.reply.Focused() || m.showHelp ||
		m.session.ConfirmingDelete() || m.session.Deleting() || m.session.SheetState() != story.SheetClosed
}

func (m viewerModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.overlayOpen() {
		// A press that began before the overlay opened still ends here.
		if msg.Action == tea.MouseActionRelease && m.press != nil {
			m.dropPress()
			cmd := m.sync()
			return m, cmd
		}
		return m, nil
	}
	pt := m.pixelPoint(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.pressSeq++
		seq := m.pressSeq
		m.press = &pressState{seq: seq, row: msg.Y, start: pt, last: pt}
		return m, tea.Tick(m.opts.LongPress, func(time.Time) tea.Msg { return longPressMsg{seq: seq} })

	case tea.MouseActionMotion:
		if m.press == nil {
			return m, nil
		}
		p := *m.press
		p.last = pt
		if !m.opts.Gestures.IsTap(p.start, pt) {
			p.moved = true
		}
		m.press = &p
		return m, nil

	case tea.MouseActionRelease:
		if m.press == nil {
			return m, nil
		}
		p := *m.press
		if p.held {
			// A long press only pauses; letting go resumes without navigating.
			m.dropPress()
			cmd := m.sync()
			return m, cmd
		}
		m.press = nil
		if p.row == m.actionRow() && m.session.IsOwn() && m.opts.Gestures.IsTap(p.start, pt) {
			cmd := m.openViewers()
			return m, cmd
		}
		in := m.opts.Gestures.Classify(p.start, pt, m.pixelWidth())
		m.log.Debug("gesture",
			zap.Stringer("intent", in),
			zap.Float64("dx", pt.X-p.start.X),
			zap.Float64("dy", pt.Y-p.start.Y))
		if in == story.IntentNone {
			return m, nil
		}
		return m.handleEvent(m.session.Apply(in, m.now()))
	}
	return m, nil
}
