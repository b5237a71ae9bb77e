package tui

import (
	"time"

	"storyview/internal/media"
	"storyview/internal/model"
)

type storiesLoadedMsg struct {
	stories []model.Story
	err     error
}

// frameMsg is one animation frame for playback generation gen. Frames from
// an older generation are dropped.
type frameMsg struct {
	gen uint64
	at  time.Time
}

type longPressMsg struct{ seq int }

type mediaLoadedMsg struct {
	seq     int
	storyID string
	res     media.Resource
	err     error
}

type deleteDoneMsg struct {
	storyID   string
	err       error
	stories   []model.Story
	reloadErr error
}

type replyDoneMsg struct {
	storyID string
	err     error
}

type viewersLoadedMsg struct {
	storyID string
	viewers []model.Viewer
	err     error
}

type viewMarkedMsg struct {
	storyID string
	err     error
}

type minibufferClearMsg struct{ seq int }
