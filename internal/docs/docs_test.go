package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"config", "controls", "fixtures", "play"}, Topics())
}

func TestGet(t *testing.T) {
	t.Parallel()

	body, ok := Get(" Controls ")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(body, "# Viewer controls"))

	for _, bad := range []string{"", "nope", "../docs", `content\play`} {
		_, ok := Get(bad)
		assert.False(t, ok, bad)
	}
}
