package cli

import (
	"errors"
	"fmt"

	"storyview/internal/store"
	"storyview/internal/story"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// mapNotFound turns the store's and engine's not-found sentinels into a
// notFoundError for kind/id; other errors pass through.
func mapNotFound(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, story.ErrStoryNotFound) {
		return errNotFound(kind, id)
	}
	return err
}

type ownerOnlyError struct {
	userID  string
	storyID string
}

func (e ownerOnlyError) Error() string {
	return fmt.Sprintf("permission denied: %s is not the author of %s", e.userID, e.storyID)
}

func errOwnerOnly(userID, storyID string) error {
	return ownerOnlyError{userID: userID, storyID: storyID}
}
