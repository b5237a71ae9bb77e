package cli

import (
	"strconv"
	"strings"
	"time"

	"storyview/internal/model"
	"storyview/internal/story"

	"github.com/dustin/go-humanize"
)

type storyTable struct {
	stories []model.Story
	userID  string
	now     time.Time
}

func (t storyTable) TableHeaders() []string {
	return []string{"ID", "AUTHOR", "KIND", "POSTED", "EXPIRES", "VIEWS"}
}

func (t storyTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t.stories))
	for _, st := range t.stories {
		author := firstNonEmpty(st.Author.Name, st.AuthorID)
		if st.IsOwnedBy(t.userID) {
			author += " (you)"
		}
		views := "-"
		if st.IsOwnedBy(t.userID) {
			views = strconv.Itoa(st.Views)
		}
		rows = append(rows, []string{
			st.ID,
			author,
			string(st.Media.Kind),
			story.SinceLabel(st.CreatedAt, t.now),
			humanize.RelTime(t.now, st.ExpiresAt, "ago", "left"),
			views,
		})
	}
	return rows
}

type viewerTable struct {
	rows []story.ViewerRow
}

func (t viewerTable) TableHeaders() []string { return []string{"USER", "NAME", "VIEWED"} }

func (t viewerTable) TableRows() [][]string {
	out := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, []string{r.ID, r.Name, r.Since})
	}
	return out
}

type userTable struct {
	users   []model.User
	current string
	now     time.Time
}

func (t userTable) TableHeaders() []string { return []string{"", "ID", "NAME", "JOINED"} }

func (t userTable) TableRows() [][]string {
	out := make([][]string, 0, len(t.users))
	for _, u := range t.users {
		mark := ""
		if u.ID == t.current {
			mark = "*"
		}
		name := u.Name
		if u.Avatar != "" {
			name = u.Avatar + " " + name
		}
		out = append(out, []string{mark, u.ID, name, humanize.RelTime(u.CreatedAt, t.now, "ago", "from now")})
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
