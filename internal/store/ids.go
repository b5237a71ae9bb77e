package store

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:])), nil
}

// newID draws ids until one is unused in table.
func (s *Store) newID(ctx context.Context, table, prefix string) (string, error) {
	for {
		id, err := newRandomID(prefix)
		if err != nil {
			return "", err
		}
		query, args, err := sqb.Select("COUNT(*)").From(table).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return "", ErrBadQuery
		}
		var n int
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return "", err
		}
		if n == 0 {
			return id, nil
		}
	}
}
