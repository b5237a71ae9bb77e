package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrNotFound = errors.New("not found")
	ErrBadQuery = errors.New("bad query")
)

// sqb builds SQLite statements ("?" placeholders).
var sqb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const dbFileName = "storyview.db"

// Store is the local collaborator data layer: users, stories, views and
// replies in a single SQLite file under Dir.
type Store struct {
	Dir string

	db *sql.DB
}

// Open creates Dir if needed, opens the database and applies migrations.
func Open(ctx context.Context, dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: empty dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, dbFileName)

	// modernc.org/sqlite driver name is "sqlite". Pragmas go in the DSN so
	// every pooled connection gets them (foreign_keys is per connection).
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	q := url.Values{}
	for _, p := range []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"foreign_keys(1)",
		"busy_timeout(5000)",
	} {
		q.Add("_pragma", p)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Dir: dir, db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Path() string { return filepath.Join(s.Dir, dbFileName) }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) getMeta(ctx context.Context, k string) (string, error) {
	query, args, err := sqb.Select("v").From("meta").Where(sq.Eq{"k": k}).ToSql()
	if err != nil {
		return "", ErrBadQuery
	}
	var v string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) setMeta(ctx context.Context, k, v string) error {
	query, args, err := sqb.Insert("meta").Columns("k", "v").Values(k, v).
		Suffix("ON CONFLICT(k) DO UPDATE SET v = excluded.v").ToSql()
	if err != nil {
		return ErrBadQuery
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
