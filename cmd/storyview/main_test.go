package main

import (
	"reflect"
	"testing"
)

func TestRewriteDeepLinkArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"storyview"},
			want: []string{"storyview"},
		},
		{
			name: "story id first token",
			in:   []string{"storyview", "story-k3v9"},
			want: []string{"storyview", "view", "--story", "story-k3v9"},
		},
		{
			name: "story id after value flag",
			in:   []string{"storyview", "--dir", "./tmp", "story-k3v9"},
			want: []string{"storyview", "--dir", "./tmp", "view", "--story", "story-k3v9"},
		},
		{
			name: "story id after equals flag",
			in:   []string{"storyview", "--user=user-ana", "story-k3v9"},
			want: []string{"storyview", "--user=user-ana", "view", "--story", "story-k3v9"},
		},
		{
			name: "story id after bool flag",
			in:   []string{"storyview", "--pretty", "story-k3v9"},
			want: []string{"storyview", "--pretty", "view", "--story", "story-k3v9"},
		},
		{
			name: "story id after double dash",
			in:   []string{"storyview", "--dir", "./tmp", "--", "story-k3v9"},
			want: []string{"storyview", "--dir", "./tmp", "view", "--story", "story-k3v9"},
		},
		{
			name: "value of a value flag is not a positional",
			in:   []string{"storyview", "--user", "story-k3v9", "stories", "list"},
			want: []string{"storyview", "--user", "story-k3v9", "stories", "list"},
		},
		{
			name: "bare prefix not rewritten",
			in:   []string{"storyview", "story-"},
			want: []string{"storyview", "story-"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"storyview", "stories", "show", "story-k3v9"},
			want: []string{"storyview", "stories", "show", "story-k3v9"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"storyview", "wat"},
			want: []string{"storyview", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDeepLinkArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDeepLinkArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
