package tui

import (
	"strings"

	"storyview/internal/story"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

type viewerItem struct {
	row story.ViewerRow
}

var _ list.DefaultItem = viewerItem{}

func (i viewerItem) Title() string {
	if i.row.Avatar != "" {
		return i.row.Avatar + " " + i.row.Name
	}
	return i.row.Name
}

func (i viewerItem) Description() string { return "viewed " + i.row.Since }
func (i viewerItem) FilterValue() string { return i.row.Name }

func (m *viewerModel) refreshSheet() {
	rows := m.session.SheetRows(m.now())
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, viewerItem{row: r})
	}
	m.sheet.SetItems(items)
	m.sheet.Select(0)
}

func (m viewerModel) viewSheet() string {
	bodyW := modalBodyWidth(m.width)
	var body string
	switch m.session.SheetState() {
	case story.SheetLoading:
		body = styleMuted().Render("Loading viewers…")
	case story.SheetEmpty:
		body = "No views yet"
	case story.SheetList:
		body = m.sheet.View()
	}
	help := styleMuted().Width(bodyW).Render("↑/↓: scroll   esc/v: close")
	title := "Viewers"
	if st, ok := m.session.Current(); ok {
		title = "Viewers · " + viewsLabel(st.Views)
	}
	return renderModalBox(m.width, title, strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		help,
	}, "\n"))
}
