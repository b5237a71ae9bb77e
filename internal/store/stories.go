package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storyview/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTTL is how long a story stays visible after it is posted.
const DefaultTTL = 24 * time.Hour

type NewStory struct {
	AuthorID  string
	Media     model.Media
	Overlays  []model.Overlay
	CreatedAt time.Time
	TTL       time.Duration
}

func (s *Store) CreateStory(ctx context.Context, in NewStory) (model.Story, error) {
	in.AuthorID = strings.TrimSpace(in.AuthorID)
	if in.AuthorID == "" {
		return model.Story{}, errors.New("missing author")
	}
	if !in.Media.Kind.Valid() {
		return model.Story{}, fmt.Errorf("invalid media kind: %q", in.Media.Kind)
	}
	if in.Media.Kind == model.MediaKindText && strings.TrimSpace(in.Media.Body) == "" {
		return model.Story{}, errors.New("text story needs a body")
	}
	if in.Media.Kind != model.MediaKindText && strings.TrimSpace(in.Media.URL) == "" {
		return model.Story{}, fmt.Errorf("%s story needs a url", in.Media.Kind)
	}
	if _, err := s.GetUser(ctx, in.AuthorID); err != nil {
		return model.Story{}, err
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	if in.TTL <= 0 {
		in.TTL = DefaultTTL
	}

	id, err := s.newID(ctx, "stories", "story")
	if err != nil {
		return model.Story{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Story{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertStory(ctx, tx, id, in); err != nil {
		return model.Story{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Story{}, err
	}
	return s.GetStory(ctx, id)
}

func insertStory(ctx context.Context, tx *sql.Tx, id string, in NewStory) error {
	query, args, err := sqb.Insert("stories").
		Columns("id", "author_id", "media_kind", "media_url", "media_body", "created_at_unixms", "expires_at_unixms").
		Values(id, in.AuthorID, string(in.Media.Kind), in.Media.URL, in.Media.Body,
			in.CreatedAt.UnixMilli(), in.CreatedAt.Add(in.TTL).UnixMilli()).
		ToSql()
	if err != nil {
		return ErrBadQuery
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	for i, o := range in.Overlays {
		if o.Kind == "" {
			o.Kind = model.OverlayKindText
		}
		b, err := json.Marshal(o)
		if err != nil {
			return err
		}
		query, args, err := sqb.Insert("overlays").Columns("story_id", "idx", "json").Values(id, i, string(b)).ToSql()
		if err != nil {
			return ErrBadQuery
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert overlay: %w", err)
		}
	}
	return nil
}

func storySelect() sq.SelectBuilder {
	return sqb.Select(
		"s.id", "s.author_id", "u.name", "u.avatar", "u.created_at_unixms",
		"s.media_kind", "s.media_url", "s.media_body",
		"s.created_at_unixms", "s.expires_at_unixms",
		"(SELECT COUNT(*) FROM story_views v WHERE v.story_id = s.id)",
	).
		From("stories s").
		Join("users u ON u.id = s.author_id")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(r rowScanner) (model.Story, error) {
	var (
		st                         model.Story
		kind                       string
		userCreated, created, expi int64
	)
	if err := r.Scan(
		&st.ID, &st.AuthorID, &st.Author.Name, &st.Author.Avatar, &userCreated,
		&kind, &st.Media.URL, &st.Media.Body,
		&created, &expi, &st.Views,
	); err != nil {
		return model.Story{}, err
	}
	st.Author.ID = st.AuthorID
	st.Author.CreatedAt = time.UnixMilli(userCreated).UTC()
	st.Media.Kind = model.MediaKind(kind)
	st.CreatedAt = time.UnixMilli(created).UTC()
	st.ExpiresAt = time.UnixMilli(expi).UTC()
	st.Overlays = []model.Overlay{}
	return st, nil
}

// GetStory returns a story regardless of expiry, with overlays but without viewers.
func (s *Store) GetStory(ctx context.Context, id string) (model.Story, error) {
	query, args, err := storySelect().Where(sq.Eq{"s.id": id}).ToSql()
	if err != nil {
		return model.Story{}, ErrBadQuery
	}
	st, err := scanStory(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Story{}, fmt.Errorf("story %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Story{}, err
	}
	overlays, err := s.loadOverlays(ctx, []string{id})
	if err != nil {
		return model.Story{}, err
	}
	if o := overlays[id]; o != nil {
		st.Overlays = o
	}
	return st, nil
}

// FetchStories returns every unexpired story, oldest first. Viewer lists are
// only filled (never nil) for stories authored by viewerID.
func (s *Store) FetchStories(ctx context.Context, viewerID string, now time.Time) ([]model.Story, error) {
	query, args, err := storySelect().
		Where(sq.Gt{"s.expires_at_unixms": now.UnixMilli()}).
		OrderBy("s.created_at_unixms ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, ErrBadQuery
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stories: %w", err)
	}
	defer rows.Close()

	var (
		out    []model.Story
		ids    []string
		ownIDs []string
	)
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		out = append(out, st)
		ids = append(ids, st.ID)
		if st.IsOwnedBy(viewerID) {
			ownIDs = append(ownIDs, st.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return []model.Story{}, nil
	}

	var (
		overlays map[string][]model.Overlay
		viewers  map[string][]model.Viewer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overlays, err = s.loadOverlays(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		viewers, err = s.loadViewers(gctx, ownIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		if o := overlays[out[i].ID]; o != nil {
			out[i].Overlays = o
		}
		if out[i].IsOwnedBy(viewerID) {
			out[i].Viewers = viewers[out[i].ID]
			if out[i].Viewers == nil {
				out[i].Viewers = []model.Viewer{}
			}
		}
	}
	return out, nil
}

func (s *Store) loadOverlays(ctx context.Context, storyIDs []string) (map[string][]model.Overlay, error) {
	out := map[string][]model.Overlay{}
	if len(storyIDs) == 0 {
		return out, nil
	}
	query, args, err := sqb.Select("story_id", "json").From("overlays").
		Where(sq.Eq{"story_id": storyIDs}).
		OrderBy("story_id", "idx").
		ToSql()
	if err != nil {
		return nil, ErrBadQuery
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query overlays: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var o model.Overlay
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return nil, fmt.Errorf("overlay for %s: %w", id, err)
		}
		out[id] = append(out[id], o)
	}
	return out, rows.Err()
}

func (s *Store) loadViewers(ctx context.Context, storyIDs []string) (map[string][]model.Viewer, error) {
	out := map[string][]model.Viewer{}
	if len(storyIDs) == 0 {
		return out, nil
	}
	query, args, err := sqb.Select("v.story_id", "u.id", "u.name", "u.avatar", "v.viewed_at_unixms").
		From("story_views v").
		Join("users u ON u.id = v.viewer_id").
		Where(sq.Eq{"v.story_id": storyIDs}).
		OrderBy("v.viewed_at_unixms DESC", "u.id ASC").
		ToSql()
	if err != nil {
		return nil, ErrBadQuery
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query viewers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			storyID string
			v       model.Viewer
			at      int64
		)
		if err := rows.Scan(&storyID, &v.ID, &v.Name, &v.Avatar, &at); err != nil {
			return nil, err
		}
		v.ViewedAt = time.UnixMilli(at).UTC()
		out[storyID] = append(out[storyID], v)
	}
	return out, rows.Err()
}

// DeleteStory removes a story together with its overlays, views and replies.
func (s *Store) DeleteStory(ctx context.Context, id string) error {
	query, args, err := sqb.Delete("stories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return ErrBadQuery
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("story %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordView marks storyID as seen by viewerID. Authors never count as
// viewers of their own stories and repeat views keep the first timestamp.
// It reports whether a new view was stored.
func (s *Store) RecordView(ctx context.Context, storyID, viewerID string, at time.Time) (bool, error) {
	st, err := s.GetStory(ctx, storyID)
	if err != nil {
		return false, err
	}
	if st.IsOwnedBy(viewerID) {
		return false, nil
	}
	query, args, err := sqb.Insert("story_views").
		Columns("id", "story_id", "viewer_id", "viewed_at_unixms").
		Values(uuid.NewString(), storyID, viewerID, at.UnixMilli()).
		Suffix("ON CONFLICT(story_id, viewer_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, ErrBadQuery
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CleanupExpired deletes stories whose expiry is at or before now.
func (s *Store) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := sqb.Delete("stories").
		Where(sq.LtOrEq{"expires_at_unixms": now.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, ErrBadQuery
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired: %w", err)
	}
	return res.RowsAffected()
}

// Viewers lists who has seen storyID. The result is never nil.
func (s *Store) Viewers(ctx context.Context, storyID string) ([]model.Viewer, error) {
	byStory, err := s.loadViewers(ctx, []string{storyID})
	if err != nil {
		return nil, err
	}
	if v := byStory[storyID]; v != nil {
		return v, nil
	}
	return []model.Viewer{}, nil
}
