package story

import (
	"time"

	"storyview/internal/model"

	"github.com/dustin/go-humanize"
)

type SheetState int

const (
	SheetClosed SheetState = iota
	SheetLoading
	SheetEmpty
	SheetList
)

func (s SheetState) String() string {
	switch s {
	case SheetLoading:
		return "loading"
	case SheetEmpty:
		return "empty"
	case SheetList:
		return "list"
	default:
		return "closed"
	}
}

type ViewerRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Since  string `json:"since"`
}

// ViewerSheet presents who viewed an own story. It never mutates the story.
type ViewerSheet struct {
	open    bool
	storyID string
	viewers []model.Viewer
}

func (s *ViewerSheet) Open(st model.Story) {
	s.open = true
	s.storyID = st.ID
	s.viewers = st.Viewers
}

func (s *ViewerSheet) Close() {
	s.open = false
	s.storyID = ""
	s.viewers = nil
}

// Fill supplies the viewer list for a sheet opened while it was unknown. It
// reports false when the sheet has since closed or moved to another story.
func (s *ViewerSheet) Fill(storyID string, viewers []model.Viewer) bool {
	if !s.open || s.storyID != storyID {
		return false
	}
	if viewers == nil {
		viewers = []model.Viewer{}
	}
	s.viewers = viewers
	return true
}

func (s *ViewerSheet) IsOpen() bool { return s.open }
func (s *ViewerSheet) StoryID() string { return s.storyID }

// State distinguishes "not known yet" (nil viewers) from "nobody yet"
// (an empty list).
func (s *ViewerSheet) State() SheetState {
	switch {
	case !s.open:
		return SheetClosed
	case s.viewers == nil:
		return SheetLoading
	case len(s.viewers) == 0:
		return SheetEmpty
	default:
		return SheetList
	}
}

func (s *ViewerSheet) Rows(now time.Time) []ViewerRow {
	if s.State() != SheetList {
		return nil
	}
	rows := make([]ViewerRow, 0, len(s.viewers))
	for _, v := range s.viewers {
		name := v.Name
		if name == "" {
			name = v.ID
		}
		rows = append(rows, ViewerRow{
			ID:     v.ID,
			Name:   name,
			Avatar: v.Avatar,
			Since:  SinceLabel(v.ViewedAt, now),
		})
	}
	return rows
}

// SinceLabel renders a relative "time since" label, e.g. "5 minutes ago".
func SinceLabel(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.Sub(t) < time.Minute && !t.After(now) {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
