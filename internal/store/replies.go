package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storyview/internal/model"

	sq "github.com/Masterminds/squirrel"
)

func (s *Store) AddReply(ctx context.Context, storyID, authorID, body string, at time.Time) (model.Reply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return model.Reply{}, errors.New("empty reply")
	}
	if _, err := s.GetStory(ctx, storyID); err != nil {
		return model.Reply{}, err
	}
	id, err := s.newID(ctx, "replies", "reply")
	if err != nil {
		return model.Reply{}, err
	}
	query, args, err := sqb.Insert("replies").
		Columns("id", "story_id", "author_id", "body", "created_at_unixms").
		Values(id, storyID, authorID, body, at.UnixMilli()).
		ToSql()
	if err != nil {
		return model.Reply{}, ErrBadQuery
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.Reply{}, fmt.Errorf("insert reply: %w", err)
	}
	return model.Reply{ID: id, StoryID: storyID, AuthorID: authorID, Body: body, CreatedAt: time.UnixMilli(at.UnixMilli()).UTC()}, nil
}

func (s *Store) ListReplies(ctx context.Context, storyID string) ([]model.Reply, error) {
	query, args, err := sqb.Select("id", "story_id", "author_id", "body", "created_at_unixms").
		From("replies").
		Where(sq.Eq{"story_id": storyID}).
		OrderBy("created_at_unixms ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, ErrBadQuery
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reply{}
	for rows.Next() {
		var (
			r  model.Reply
			at int64
		)
		if err := rows.Scan(&r.ID, &r.StoryID, &r.AuthorID, &r.Body, &at); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
