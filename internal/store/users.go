package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storyview/internal/model"

	sq "github.com/Masterminds/squirrel"
)

const metaCurrentUser = "current_user_id"

func (s *Store) CreateUser(ctx context.Context, name, avatar string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, errors.New("missing name")
	}
	id, err := s.newID(ctx, "users", "user")
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: id, Name: name, Avatar: strings.TrimSpace(avatar), CreatedAt: time.UnixMilli(time.Now().UnixMilli()).UTC()}
	if err := s.insertUser(ctx, s.db, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertUser(ctx context.Context, db execer, u model.User) error {
	query, args, err := sqb.Insert("users").
		Columns("id", "name", "avatar", "created_at_unixms").
		Values(u.ID, u.Name, u.Avatar, u.CreatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return ErrBadQuery
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	query, args, err := sqb.Select("id", "name", "avatar", "created_at_unixms").
		From("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.User{}, ErrBadQuery
	}
	var (
		u  model.User
		at int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Avatar, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = time.UnixMilli(at).UTC()
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	query, args, err := sqb.Select("id", "name", "avatar", "created_at_unixms").
		From("users").OrderBy("created_at_unixms ASC", "id ASC").ToSql()
	if err != nil {
		return nil, ErrBadQuery
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var (
			u  model.User
			at int64
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Avatar, &at); err != nil {
			return nil, err
		}
		u.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

// CurrentUser returns the user id selected with SetCurrentUser, or "".
func (s *Store) CurrentUser(ctx context.Context) (string, error) {
	return s.getMeta(ctx, metaCurrentUser)
}

func (s *Store) SetCurrentUser(ctx context.Context, id string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.setMeta(ctx, metaCurrentUser, id)
}
