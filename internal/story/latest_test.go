package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatest(t *testing.T) {
	t.Parallel()

	var l Latest[func() string]
	_, ok := l.Load()
	assert.False(t, ok)

	l.Store(func() string { return "first" })
	l.Store(func() string { return "second" })

	fn, ok := l.Load()
	assert.True(t, ok)
	assert.Equal(t, "second", fn())
}
