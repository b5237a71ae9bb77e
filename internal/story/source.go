package story

//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock.go

import (
	"context"

	"storyview/internal/model"
)

// Source is the data layer the viewer reads from. Expired stories are
// excluded by the source, never filtered by the viewer.
type Source interface {
	FetchStories(ctx context.Context) ([]model.Story, error)
	DeleteStory(ctx context.Context, id string) error
}

// ViewRecorder is implemented by sources that track who saw a story.
type ViewRecorder interface {
	MarkViewed(ctx context.Context, storyID string) error
}

// Replier is implemented by sources that accept replies.
type Replier interface {
	Reply(ctx context.Context, storyID, body string) error
}

// ViewerLister is implemented by sources that can look up who viewed a
// story on demand, for stories fetched without their viewer list.
type ViewerLister interface {
	ListViewers(ctx context.Context, storyID string) ([]model.Viewer, error)
}
