package story

import (
	"errors"
	"time"

	"storyview/internal/model"
)

type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLoadError
	ScreenNotFound
	ScreenEmpty
	ScreenActive
)

func (s Screen) String() string {
	switch s {
	case ScreenLoadError:
		return "load-error"
	case ScreenNotFound:
		return "not-found"
	case ScreenEmpty:
		return "empty"
	case ScreenActive:
		return "active"
	default:
		return "loading"
	}
}

type EventKind int

const (
	EventNone EventKind = iota
	EventMoved
	EventExit
)

func (k EventKind) String() string {
	switch k {
	case EventMoved:
		return "moved"
	case EventExit:
		return "exit"
	default:
		return "none"
	}
}

// Event reports a committed transition.
type Event struct {
	Kind     EventKind `json:"kind"`
	Position Position  `json:"position"`
	StoryID  string    `json:"storyId,omitempty"`
}

type Config struct {
	CurrentUserID string
	// TargetID is the deep-link story id; empty starts at the first story.
	TargetID string
	Duration time.Duration
}

// Session is the viewer screen state machine. It is not safe for concurrent
// use; hosts serialize calls (Bubble Tea's Update loop, or Driver's mutex).
type Session struct {
	cfg Config

	screen  Screen
	loadErr error
	groups  []Group
	pos     Position

	pause    PauseArbiter
	playback *Playback
	sheet    ViewerSheet
	deletion DeletionFlow
	liked    map[string]bool

	exited bool
	closed bool
}

func NewSession(cfg Config) *Session {
	return &Session{
		cfg:      cfg,
		screen:   ScreenLoading,
		playback: NewPlayback(cfg.Duration),
		liked:    map[string]bool{},
	}
}

func (s *Session) Screen() Screen { return s.screen }
func (s *Session) LoadErr() error { return s.loadErr }
func (s *Session) Groups() []Group { return s.groups }
func (s *Session) Position() Position { return s.pos }
func (s *Session) Exited() bool { return s.exited }
func (s *Session) Paused() bool { return s.pause.Paused() }
func (s *Session) Holding() bool { return s.pause.Has(SourceHold) }
func (s *Session) InputFocused() bool { return s.pause.Has(SourceInput) }
func (s *Session) Progress() float64 { return s.playback.Progress() }
func (s *Session) Generation() uint64 { return s.playback.Generation() }
func (s *Session) Running() bool { return s.live() && s.playback.Running() }
func (s *Session) Duration() time.Duration { return s.playback.Duration() }
func (s *Session) CurrentUserID() string { return s.cfg.CurrentUserID }

func (s *Session) Remaining(now time.Time) time.Duration { return s.playback.Remaining(now) }

func (s *Session) live() bool {
	return !s.exited && !s.closed
}

func (s *Session) active() bool {
	return s.live() && s.screen == ScreenActive
}

// Loaded applies the result of a fetch and picks the screen.
func (s *Session) Loaded(stories []model.Story, err error, now time.Time) {
	if !s.live() {
		return
	}
	if err != nil {
		s.screen = ScreenLoadError
		s.loadErr = err
		s.groups = nil
		return
	}
	s.loadErr = nil
	s.groups = GroupByAuthor(stories)
	if len(s.groups) == 0 {
		s.screen = ScreenEmpty
		return
	}
	pos, rerr := Resolve(s.groups, s.cfg.TargetID)
	if errors.Is(rerr, ErrStoryNotFound) {
		s.screen = ScreenNotFound
		return
	}
	s.screen = ScreenActive
	s.pos = pos
	s.playback.Restart(now, s.pause.Paused())
}

// Retry leaves LoadError for a new fetch. It reports whether the host
// should fetch again.
func (s *Session) Retry() bool {
	if !s.live() || s.screen != ScreenLoadError {
		return false
	}
	s.screen = ScreenLoading
	s.loadErr = nil
	return true
}

func (s *Session) Current() (model.Story, bool) {
	if s.screen != ScreenActive {
		return model.Story{}, false
	}
	return storyAt(s.groups, s.pos)
}

func (s *Session) IsOwn() bool {
	st, ok := s.Current()
	return ok && st.IsOwnedBy(s.cfg.CurrentUserID)
}

// Segments returns fill ratios for the current group's progress bar.
func (s *Session) Segments() []float64 {
	if s.screen != ScreenActive || !inRange(s.groups, s.pos) {
		return nil
	}
	return Segments(len(s.groups[s.pos.Group].Stories), s.pos.Story, s.playback.Progress())
}

func (s *Session) Next(now time.Time) Event {
	if !s.active() {
		return Event{}
	}
	pos, out := Next(s.groups, s.pos)
	switch out {
	case OutcomeMoved:
		return s.moveTo(pos, now)
	case OutcomeExit:
		return s.Exit()
	}
	return Event{}
}

func (s *Session) Previous(now time.Time) Event {
	if !s.active() {
		return Event{}
	}
	pos, out := Previous(s.groups, s.pos)
	if out == OutcomeMoved {
		return s.moveTo(pos, now)
	}
	return Event{}
}

// Apply runs a navigation intent. Exit is honored on every screen.
func (s *Session) Apply(in Intent, now time.Time) Event {
	switch in {
	case IntentNext:
		return s.Next(now)
	case IntentPrevious:
		return s.Previous(now)
	case IntentExit:
		return s.Exit()
	}
	return Event{}
}

func (s *Session) moveTo(pos Position, now time.Time) Event {
	s.pos = pos
	if s.sheet.IsOpen() {
		s.sheet.Close()
	}
	s.deletion.Cancel()
	s.syncModalPause(now)
	s.playback.Restart(now, s.pause.Paused())
	st, _ := storyAt(s.groups, pos)
	return Event{Kind: EventMoved, Position: pos, StoryID: st.ID}
}

// Exit closes the viewer. It fires once; later calls return EventNone.
func (s *Session) Exit() Event {
	if !s.live() {
		return Event{}
	}
	s.exited = true
	s.playback.Stop()
	s.sheet.Close()
	st, _ := storyAt(s.groups, s.pos)
	return Event{Kind: EventExit, Position: s.pos, StoryID: st.ID}
}

// Close unmounts the viewer without emitting exit.
func (s *Session) Close() {
	s.closed = true
	s.playback.Stop()
}

// Tick feeds a timer armed at generation gen. When the story completes the
// session advances through the same path as user navigation.
func (s *Session) Tick(gen uint64, now time.Time) Event {
	if !s.active() {
		return Event{}
	}
	if !s.playback.Tick(gen, now) {
		return Event{}
	}
	return s.Next(now)
}

// SetPause toggles one pause source and pauses or restarts playback when
// the combined gate flips.
func (s *Session) SetPause(src PauseSource, on bool, now time.Time) {
	if !s.pause.Set(src, on) || !s.active() {
		return
	}
	if s.pause.Paused() {
		s.playback.Pause()
	} else {
		s.playback.Resume(now)
	}
}

func (s *Session) syncModalPause(now time.Time) {
	s.SetPause(SourceModal, s.sheet.IsOpen() || s.deletion.State() != DeleteIdle, now)
}

func (s *Session) OpenViewers(now time.Time) bool {
	st, ok := s.Current()
	if !ok || !s.active() || !st.IsOwnedBy(s.cfg.CurrentUserID) {
		return false
	}
	s.sheet.Open(st)
	s.syncModalPause(now)
	return true
}

func (s *Session) CloseViewers(now time.Time) {
	s.sheet.Close()
	s.syncModalPause(now)
}

// ViewersLoaded fills an open sheet that was waiting on storyID's viewers.
// Results for a sheet that is gone are dropped.
func (s *Session) ViewersLoaded(storyID string, viewers []model.Viewer) bool {
	return s.sheet.Fill(storyID, viewers)
}

// SheetStoryID is the story an open sheet belongs to.
func (s *Session) SheetStoryID() string { return s.sheet.StoryID() }

func (s *Session) SheetState() SheetState { return s.sheet.State() }

func (s *Session) SheetRows(now time.Time) []ViewerRow { return s.sheet.Rows(now) }

func (s *Session) Deleting() bool { return s.deletion.Deleting() }
func (s *Session) ConfirmingDelete() bool { return s.deletion.Confirming() }

func (s *Session) RequestDelete(now time.Time) error {
	st, ok := s.Current()
	if !ok || !s.active() {
		return ErrStoryNotFound
	}
	if err := s.deletion.Request(st.ID, st.IsOwnedBy(s.cfg.CurrentUserID)); err != nil {
		return err
	}
	s.syncModalPause(now)
	return nil
}

func (s *Session) CancelDelete(now time.Time) {
	s.deletion.Cancel()
	s.syncModalPause(now)
}

// ConfirmDelete returns the story id to delete. While the delete is in
// flight further confirmations are refused.
func (s *Session) ConfirmDelete() (string, bool) {
	if !s.active() {
		return "", false
	}
	return s.deletion.Confirm()
}

// DeleteFailed keeps the current position and story list untouched.
func (s *Session) DeleteFailed(err error, now time.Time) {
	s.deletion.Fail(err)
	s.syncModalPause(now)
}

// DeleteSucceeded takes the reloaded story list, closes the sheet and exits.
func (s *Session) DeleteSucceeded(reloaded []model.Story, reloadErr error) Event {
	s.deletion.Done()
	if reloadErr == nil {
		s.groups = GroupByAuthor(reloaded)
		if !inRange(s.groups, s.pos) {
			s.pos = Position{}
		}
	}
	s.sheet.Close()
	return s.Exit()
}

// ToggleLike flips the local like flag for the current story. It is never
// persisted and never touches the story list.
func (s *Session) ToggleLike() bool {
	st, ok := s.Current()
	if !ok || st.IsOwnedBy(s.cfg.CurrentUserID) {
		return false
	}
	s.liked[st.ID] = !s.liked[st.ID]
	return s.liked[st.ID]
}

func (s *Session) Liked(storyID string) bool { return s.liked[storyID] }
