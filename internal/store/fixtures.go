package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"storyview/internal/model"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Fixtures is a YAML seed file. Times are relative to the moment of seeding
// so demo data never starts out expired.
//
//	users:
//	  - id: user-ana
//	    name: Ana
//	stories:
//	  - author: user-ana
//	    age: 2h
//	    media: {kind: image, url: ./beach.png}
//	    viewers: [{user: user-bo, ago: 5m}]
type Fixtures struct {
	Current string         `yaml:"current,omitempty"`
	Users   []FixtureUser  `yaml:"users"`
	Stories []FixtureStory `yaml:"stories"`
}

type FixtureUser struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar,omitempty"`
}

type FixtureStory struct {
	ID       string          `yaml:"id,omitempty"`
	Author   string          `yaml:"author"`
	Age      time.Duration   `yaml:"age,omitempty"`
	TTL      time.Duration   `yaml:"ttl,omitempty"`
	Media    model.Media     `yaml:"media"`
	Overlays []model.Overlay `yaml:"overlays,omitempty"`
	Viewers  []FixtureView   `yaml:"viewers,omitempty"`
}

type FixtureView struct {
	User string        `yaml:"user"`
	Ago  time.Duration `yaml:"ago,omitempty"`
}

type SeedResult struct {
	Users   int `json:"users"`
	Stories int `json:"stories"`
	Views   int `json:"views"`
}

func ParseFixtures(r io.Reader) (Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return Fixtures{}, nil
		}
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return fx, nil
}

// Seed inserts fixtures in one transaction. Existing users with the same id
// are kept as they are.
func (s *Store) Seed(ctx context.Context, fx Fixtures, now time.Time) (SeedResult, error) {
	var res SeedResult
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range fx.Users {
		if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Name) == "" {
			return res, fmt.Errorf("fixture user needs id and name: %+v", u)
		}
		query, args, err := sqb.Insert("users").
			Columns("id", "name", "avatar", "created_at_unixms").
			Values(u.ID, u.Name, u.Avatar, now.UnixMilli()).
			Suffix("ON CONFLICT(id) DO NOTHING").
			ToSql()
		if err != nil {
			return res, ErrBadQuery
		}
		r, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			res.Users++
		}
	}

	for i, fs := range fx.Stories {
		id := fs.ID
		if id == "" {
			if id, err = newRandomID("story"); err != nil {
				return res, err
			}
		}
		ttl := fs.TTL
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		in := NewStory{
			AuthorID:  fs.Author,
			Media:     fs.Media,
			Overlays:  fs.Overlays,
			CreatedAt: now.Add(-fs.Age),
			TTL:       ttl,
		}
		if !in.Media.Kind.Valid() {
			return res, fmt.Errorf("fixture story %d: invalid media kind %q", i, in.Media.Kind)
		}
		if err := insertStory(ctx, tx, id, in); err != nil {
			return res, fmt.Errorf("fixture story %d: %w", i, err)
		}
		res.Stories++

		for _, v := range fs.Viewers {
			if v.User == fs.Author {
				continue
			}
			query, args, err := sqb.Insert("story_views").
				Columns("id", "story_id", "viewer_id", "viewed_at_unixms").
				Values(uuid.NewString(), id, v.User, now.Add(-v.Ago).UnixMilli()).
				Suffix("ON CONFLICT(story_id, viewer_id) DO NOTHING").
				ToSql()
			if err != nil {
				return res, ErrBadQuery
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return res, fmt.Errorf("fixture view on %s: %w", id, err)
			}
			res.Views++
		}
	}

	if fx.Current != "" {
		query, args, err := sqb.Insert("meta").Columns("k", "v").Values(metaCurrentUser, fx.Current).
			Suffix("ON CONFLICT(k) DO UPDATE SET v = excluded.v").ToSql()
		if err != nil {
			return res, ErrBadQuery
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return res, err
		}
	}

	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}
