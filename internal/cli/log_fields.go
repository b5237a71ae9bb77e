package cli

import (
	"storyview/internal/model"

	"go.uber.org/zap"
)

func storyField(s model.Story) zap.Field {
	return zap.Dict("story",
		zap.String("id", s.ID),
		zap.String("author", s.AuthorID),
		zap.String("kind", string(s.Media.Kind)),
		zap.Time("expires_at", s.ExpiresAt))
}

func zapStory(id string) zap.Field { return zap.String("story", id) }
