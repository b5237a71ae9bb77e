package store

import (
	"context"
	"fmt"
	"time"

	"storyview/internal/model"
	"storyview/internal/story"
)

// Source adapts a Store to the viewer's data layer for one signed-in user.
type Source struct {
	Store  *Store
	UserID string
	Now    func() time.Time
}

var (
	_ story.Source       = Source{}
	_ story.ViewRecorder = Source{}
	_ story.Replier      = Source{}
	_ story.ViewerLister = Source{}
)

func (s Source) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Source) FetchStories(ctx context.Context) ([]model.Story, error) {
	return s.Store.FetchStories(ctx, s.UserID, s.now())
}

func (s Source) DeleteStory(ctx context.Context, id string) error {
	st, err := s.Store.GetStory(ctx, id)
	if err != nil {
		return err
	}
	if !st.IsOwnedBy(s.UserID) {
		return fmt.Errorf("delete %s: %w", id, story.ErrNotOwner)
	}
	return s.Store.DeleteStory(ctx, id)
}

func (s Source) MarkViewed(ctx context.Context, storyID string) error {
	_, err := s.Store.RecordView(ctx, storyID, s.UserID, s.now())
	return err
}

func (s Source) Reply(ctx context.Context, storyID, body string) error {
	_, err := s.Store.AddReply(ctx, storyID, s.UserID, body, s.now())
	return err
}

func (s Source) ListViewers(ctx context.Context, storyID string) ([]model.Viewer, error) {
	st, err := s.Store.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if !st.IsOwnedBy(s.UserID) {
		return nil, fmt.Errorf("viewers of %s: %w", storyID, story.ErrNotOwner)
	}
	return s.Store.Viewers(ctx, storyID)
}
