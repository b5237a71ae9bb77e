package format

import (
	"bytes"
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string `json:"id"`
	Views int    `json:"views"`
}

type sampleList []sample

func (l sampleList) TableHeaders() []string { return []string{"ID", "VIEWS"} }

func (l sampleList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{s.ID, strings.Repeat("*", s.Views)})
	}
	return rows
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample{ID: "a", Views: 2}, "", false))
	assert.Equal(t, "{\"id\":\"a\",\"views\":2}\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, sample{ID: "a"}, "json", true))
	assert.Contains(t, buf.String(), "\n  \"id\": \"a\"")
}

func TestWriteYAMLUsesJSONTags(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample{ID: "a", Views: 3}, "yaml", false))
	assert.Equal(t, "id: a\nviews: 3\n", buf.String())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleList{{ID: "story-1", Views: 2}, {ID: "story-2"}}, "table", false))
	out := xansi.Strip(buf.String())
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "VIEWS")
	assert.Contains(t, out, "story-1")
	assert.Contains(t, out, "**")

	buf.Reset()
	require.NoError(t, Write(&buf, sampleList{}, "table", false))
	assert.Equal(t, "(none)\n", buf.String())
}

func TestWriteTableFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample{ID: "x"}, "table", false))
	assert.Contains(t, buf.String(), "id: x")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, 1, "edn", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
