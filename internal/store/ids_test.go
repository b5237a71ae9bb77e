package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRandomID_Shape(t *testing.T) {
	t.Parallel()

	id, err := newRandomID("story")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(id, "story-"), id)

	suffix := strings.TrimPrefix(id, "story-")
	assert.Len(t, suffix, 8)
	assert.Equal(t, strings.ToLower(suffix), suffix)
}

func TestNewID_Unique(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)
	seen := map[string]bool{}
	for range 50 {
		u, err := st.CreateUser(context.Background(), "Ana", "")
		require.NoError(t, err)
		assert.False(t, seen[u.ID], "duplicate id %s", u.ID)
		seen[u.ID] = true
	}
}
