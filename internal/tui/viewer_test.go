package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storyview/internal/media"
	"storyview/internal/model"
	"storyview/internal/story"
	mock_story "storyview/internal/story/mocks"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"go.uber.org/mock/gomock"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeResource struct {
	id     string
	closed int
}

func (r *fakeResource) Render(w, h int) string { return "media:" + r.id }
func (r *fakeResource) Close() error {
	r.closed++
	return nil
}

type fakeOpener struct {
	opened []*fakeResource
}

func (o *fakeOpener) Open(_ context.Context, m model.Media) (media.Resource, error) {
	r := &fakeResource{id: m.URL}
	o.opened = append(o.opened, r)
	return r, nil
}

// fullSource exposes every optional collaborator capability.
type fullSource struct {
	*mock_story.MockSource
	*mock_story.MockViewRecorder
	*mock_story.MockReplier
}

// listingSource looks viewers up on demand.
type listingSource struct {
	*mock_story.MockSource
	*mock_story.MockViewerLister
}

func testStories() []model.Story {
	mk := func(id, author string, age time.Duration) model.Story {
		return model.Story{
			ID:        id,
			AuthorID:  author,
			Author:    model.User{ID: author, Name: strings.ToUpper(author[:1]) + author[1:]},
			Media:     model.Media{Kind: model.MediaKindImage, URL: id + ".png"},
			CreatedAt: t0.Add(-age),
			ExpiresAt: t0.Add(24*time.Hour - age),
		}
	}
	own := mk("s3", "me", time.Hour)
	own.Views = 0
	own.Viewers = []model.Viewer{}
	return []model.Story{mk("s1", "alice", 3*time.Hour), mk("s2", "alice", 2*time.Hour), own}
}

func newTestViewer(t *testing.T, src story.Source, cfg story.Config) (viewerModel, *fakeOpener) {
	t.Helper()
	if cfg.CurrentUserID == "" {
		cfg.CurrentUserID = "me"
	}
	op := &fakeOpener{}
	m := newViewerModel(context.Background(), Options{
		Source:        src,
		Media:         op,
		Session:       cfg,
		FrameInterval: time.Millisecond,
		Now:           func() time.Time { return t0 },
	})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return mm.(viewerModel), op
}

func update(t *testing.T, m viewerModel, msg tea.Msg) (viewerModel, tea.Cmd) {
	t.Helper()
	mm, cmd := m.Update(msg)
	vm, ok := mm.(viewerModel)
	if !ok {
		t.Fatalf("unexpected model type %T", mm)
	}
	return vm, cmd
}

func load(t *testing.T, m viewerModel, stories []model.Story) viewerModel {
	t.Helper()
	m, _ = update(t, m, storiesLoadedMsg{stories: stories})
	return m
}

func deliverMedia(t *testing.T, m viewerModel) (viewerModel, *fakeResource) {
	t.Helper()
	r := &fakeResource{id: m.mediaStoryID}
	m, _ = update(t, m, mediaLoadedMsg{seq: m.mediaSeq, storyID: m.mediaStoryID, res: r})
	return m, r
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func currentID(m viewerModel) string {
	st, _ := m.session.Current()
	return st.ID
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

// runCmds executes cmd and any batched commands, returning every message.
func runCmds(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmds(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestViewer_InitFetchesAndActivatesFirstStory(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_story.NewMockSource(ctrl)
	src.EXPECT().FetchStories(gomock.Any()).Return(testStories(), nil)

	m, op := newTestViewer(t, src, story.Config{})
	msg := m.Init()()
	m, cmd := update(t, m, msg)

	if got := m.session.Screen(); got != story.ScreenActive {
		t.Fatalf("expected active screen, got %s", got)
	}
	if got := currentID(m); got != "s1" {
		t.Fatalf("expected s1, got %q", got)
	}
	if m.framedGen != m.session.Generation() {
		t.Fatalf("expected a frame chain for generation %d", m.session.Generation())
	}

	for _, msg := range runCmds(cmd) {
		if ml, ok := msg.(mediaLoadedMsg); ok {
			m, _ = update(t, m, ml)
		}
	}
	if len(op.opened) != 1 || op.opened[0].id != "s1.png" {
		t.Fatalf("expected s1 media to be opened once, got %+v", op.opened)
	}
	out := xansi.Strip(m.View())
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "media:s1.png") {
		t.Fatalf("expected header and media in view, got:\n%s", out)
	}
}

func TestViewer_FrameCompletionAdvancesAndDropsStaleFrames(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())
	gen := m.session.Generation()

	m, cmd := update(t, m, frameMsg{gen: gen, at: t0.Add(2 * time.Second)})
	if p := m.session.Progress(); p < 0.39 || p > 0.41 {
		t.Fatalf("expected progress 0.4, got %v", p)
	}
	if cmd == nil {
		t.Fatalf("expected the frame chain to continue")
	}

	m, _ = update(t, m, frameMsg{gen: gen, at: t0.Add(5 * time.Second)})
	if got := currentID(m); got != "s2" {
		t.Fatalf("expected completion to advance to s2, got %q", got)
	}
	if p := m.session.Progress(); p != 0 {
		t.Fatalf("expected progress reset, got %v", p)
	}

	m, cmd = update(t, m, frameMsg{gen: gen, at: t0.Add(20 * time.Second)})
	if cmd != nil || currentID(m) != "s2" {
		t.Fatalf("expected stale frame to be dropped")
	}
}

func TestViewer_KeysNavigateAndExit(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())

	m, _ = update(t, m, keyRunes("l"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := currentID(m); got != "s3" {
		t.Fatalf("expected s3, got %q", got)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, keyRunes("h"))
	m, _ = update(t, m, keyRunes("h"))
	if got := currentID(m); got != "s1" {
		t.Fatalf("expected previous at the first story to be a no-op, got %q", got)
	}

	m, cmd := update(t, m, keyRunes("q"))
	if !isQuit(cmd) {
		t.Fatalf("expected quit")
	}
	if !m.result.Exited || m.result.LastStoryID != "s1" {
		t.Fatalf("unexpected result %+v", m.result)
	}
	if _, cmd = update(t, m, keyRunes("q")); cmd != nil && isQuit(cmd) {
		t.Fatalf("expected exit to fire only once")
	}
}

func TestViewer_NextOnLastStoryExits(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s3"})
	m = load(t, m, testStories())
	m, r := deliverMedia(t, m)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if !isQuit(cmd) {
		t.Fatalf("expected next on the last story to exit")
	}
	if r.closed != 1 {
		t.Fatalf("expected media released on exit, closed=%d", r.closed)
	}
	if got := m.session.Position(); got != (story.Position{Group: 1, Story: 0}) {
		t.Fatalf("expected position unchanged, got %+v", got)
	}
}

func TestViewer_MediaIsReplacedOnEveryMove(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())
	m, first := deliverMedia(t, m)
	staleSeq := m.mediaSeq

	m, _ = update(t, m, keyRunes("l"))
	if first.closed != 1 {
		t.Fatalf("expected previous story media to be closed, closed=%d", first.closed)
	}
	if m.res != nil {
		t.Fatalf("expected no media until the new story's resource loads")
	}

	late := &fakeResource{id: "s1"}
	m, _ = update(t, m, mediaLoadedMsg{seq: staleSeq, storyID: "s1", res: late})
	if late.closed != 1 || m.res != nil {
		t.Fatalf("expected late resource to be closed and never shown")
	}

	m, second := deliverMedia(t, m)
	if m.res != second || second.id != "s2" {
		t.Fatalf("expected s2 media to be active")
	}
}

func TestViewer_MouseTapsAndSwipes(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s2"})
	m = load(t, m, testStories())

	click := func(m viewerModel, x1, y1, x2, y2 int) (viewerModel, tea.Cmd) {
		m, _ = update(t, m, tea.MouseMsg{X: x1, Y: y1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		m, _ = update(t, m, tea.MouseMsg{X: x2, Y: y2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
		return update(t, m, tea.MouseMsg{X: x2, Y: y2, Action: tea.MouseActionRelease})
	}

	m, _ = click(m, 10, 5, 10, 5)
	if got := currentID(m); got != "s1" {
		t.Fatalf("expected left tap to go back, got %q", got)
	}
	m, _ = click(m, 70, 5, 70, 5)
	if got := currentID(m); got != "s2" {
		t.Fatalf("expected right tap to go forward, got %q", got)
	}
	// 3 cells = 30px: past tap slop, under the swipe threshold.
	m, _ = click(m, 40, 5, 43, 5)
	if got := currentID(m); got != "s2" {
		t.Fatalf("expected short drag to do nothing, got %q", got)
	}
	m, _ = click(m, 60, 5, 20, 6)
	if got := currentID(m); got != "s3" {
		t.Fatalf("expected left swipe to go forward, got %q", got)
	}
	m, _ = click(m, 40, 8, 40, 2)
	if got := currentID(m); got != "s3" || m.session.Exited() {
		t.Fatalf("expected up swipe to do nothing")
	}
	_, cmd := click(m, 40, 2, 41, 10)
	if !isQuit(cmd) {
		t.Fatalf("expected down swipe to exit")
	}
}

func TestViewer_LongPressHoldsWithoutNavigating(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())

	m, _ = update(t, m, tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, longPressMsg{seq: m.pressSeq - 1})
	if m.session.Paused() {
		t.Fatalf("expected stale long press to be ignored")
	}
	m, _ = update(t, m, longPressMsg{seq: m.pressSeq})
	if !m.session.Holding() || m.session.Running() {
		t.Fatalf("expected long press to hold playback")
	}
	held := m.session.Generation()

	m, _ = update(t, m, tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionRelease})
	if m.session.Paused() || !m.session.Running() {
		t.Fatalf("expected release to resume playback")
	}
	if got := currentID(m); got != "s1" {
		t.Fatalf("expected release after hold not to navigate, got %q", got)
	}
	if m.session.Generation() == held || m.framedGen != m.session.Generation() {
		t.Fatalf("expected a fresh frame chain after resume")
	}
	if p := m.session.Progress(); p != 0 {
		t.Fatalf("expected resume to restart at 0, got %v", p)
	}
}

func TestViewer_NavigatingDuringLongPressReleasesHold(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())

	m, _ = update(t, m, tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, longPressMsg{seq: m.pressSeq})
	if !m.session.Holding() {
		t.Fatalf("expected long press to hold playback")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := currentID(m); got != "s2" {
		t.Fatalf("expected key to navigate during the hold, got %q", got)
	}
	if m.session.Holding() || !m.session.Running() || m.press != nil {
		t.Fatalf("expected moving away to drop the press and its hold")
	}

	m, _ = update(t, m, tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionRelease})
	if got := currentID(m); got != "s2" || !m.session.Running() {
		t.Fatalf("expected the orphaned release to do nothing, got %q", got)
	}
}

func TestViewer_ReleaseUnderOverlayEndsHold(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s3"})
	m = load(t, m, testStories())

	m, _ = update(t, m, tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, longPressMsg{seq: m.pressSeq})
	m, _ = update(t, m, keyRunes("v"))
	if m.session.SheetState() != story.SheetEmpty || !m.session.Holding() {
		t.Fatalf("expected the sheet to open during the hold")
	}

	m, _ = update(t, m, tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionRelease})
	if m.session.Holding() || m.press != nil {
		t.Fatalf("expected release under the sheet to end the hold")
	}
	if m.session.Running() {
		t.Fatalf("expected the sheet to keep playback paused")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.session.Paused() || !m.session.Running() {
		t.Fatalf("expected closing the sheet to resume playback")
	}
	if got := currentID(m); got != "s3" {
		t.Fatalf("expected no navigation, got %q", got)
	}
}

func TestViewer_TapOnViewsOpensSheet(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s3"})
	m = load(t, m, testStories())

	row := m.actionRow()
	if lines := strings.Split(xansi.Strip(m.View()), "\n"); !strings.Contains(lines[row], "0 views") {
		t.Fatalf("expected views affordance on row %d, got %q", row, lines[row])
	}

	m, _ = update(t, m, tea.MouseMsg{X: 3, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 3, Y: row, Action: tea.MouseActionRelease})
	if got := m.session.SheetState(); got != story.SheetEmpty {
		t.Fatalf("expected tap on views to open the sheet, got %s", got)
	}
	if got := currentID(m); got != "s3" || m.session.Exited() {
		t.Fatalf("expected tap on views not to navigate, got %q", got)
	}
}

func TestViewer_SpaceTogglesHold(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())

	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	m, _ = update(t, m, space)
	if !m.session.Holding() {
		t.Fatalf("expected hold")
	}
	if !strings.Contains(xansi.Strip(m.View()), "paused") {
		t.Fatalf("expected paused indicator in header")
	}
	m, _ = update(t, m, space)
	if m.session.Paused() {
		t.Fatalf("expected hold released")
	}
}

func TestViewer_ReplyFocusPausesAndSends(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := fullSource{
		MockSource:       mock_story.NewMockSource(ctrl),
		MockViewRecorder: mock_story.NewMockViewRecorder(ctrl),
		MockReplier:      mock_story.NewMockReplier(ctrl),
	}
	src.MockReplier.EXPECT().Reply(gomock.Any(), "s1", "nice shot").Return(nil)

	m, _ := newTestViewer(t, src, story.Config{})
	m = load(t, m, testStories())

	m, _ = update(t, m, keyRunes("r"))
	if !m.session.InputFocused() || m.session.Running() {
		t.Fatalf("expected reply focus to pause playback")
	}
	m, _ = update(t, m, keyRunes("l"))
	if got := currentID(m); got != "s1" {
		t.Fatalf("expected typing not to navigate, got %q", got)
	}
	m.reply.SetValue("nice shot")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Paused() || m.reply.Focused() {
		t.Fatalf("expected send to blur the reply field and resume")
	}
	var sent bool
	for _, msg := range runCmds(cmd) {
		if rd, ok := msg.(replyDoneMsg); ok {
			sent = rd.err == nil && rd.storyID == "s1"
		}
	}
	if !sent {
		t.Fatalf("expected reply to be sent")
	}
}

func TestViewer_ReplyEscapeDiscards(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())

	m, _ = update(t, m, keyRunes("r"))
	m.reply.SetValue("draft")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.session.Paused() || m.reply.Value() != "" || m.session.Exited() {
		t.Fatalf("expected esc to blur the reply field without exiting")
	}
}

func TestViewer_MarksOthersStoriesViewedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := fullSource{
		MockSource:       mock_story.NewMockSource(ctrl),
		MockViewRecorder: mock_story.NewMockViewRecorder(ctrl),
		MockReplier:      mock_story.NewMockReplier(ctrl),
	}
	src.MockViewRecorder.EXPECT().MarkViewed(gomock.Any(), "s2").Return(nil).Times(1)

	m, _ := newTestViewer(t, src, story.Config{TargetID: "s2"})
	m, cmd := update(t, m, storiesLoadedMsg{stories: testStories()})
	runCmds(cmd)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	runCmds(cmd) // s3 is own: no view recorded
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	runCmds(cmd) // s2 again: already recorded
}

func TestViewer_OwnStoryViewersSheet(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s3"})
	m = load(t, m, testStories())

	out := xansi.Strip(m.View())
	if !strings.Contains(out, "0 views") || strings.Contains(out, "reply") {
		t.Fatalf("expected views affordance instead of reply for own story:\n%s", out)
	}

	m, _ = update(t, m, keyRunes("v"))
	if got := m.session.SheetState(); got != story.SheetEmpty {
		t.Fatalf("expected empty sheet, got %s", got)
	}
	if m.session.Running() {
		t.Fatalf("expected the open sheet to hold playback")
	}
	if out := xansi.Strip(m.View()); !strings.Contains(out, "No views yet") {
		t.Fatalf("expected empty viewers state, got:\n%s", out)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.session.SheetState() != story.SheetClosed || !m.session.Running() || m.session.Exited() {
		t.Fatalf("expected esc to close the sheet and resume")
	}
}

func TestViewer_ViewersSheetListsRows(t *testing.T) {
	stories := testStories()
	stories[2].Views = 2
	stories[2].Viewers = []model.Viewer{
		{ID: "alice", Name: "Alice", ViewedAt: t0.Add(-5 * time.Minute)},
		{ID: "bob", Name: "Bob", ViewedAt: t0.Add(-10 * time.Second)},
	}
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s3"})
	m = load(t, m, stories)
	m, _ = update(t, m, keyRunes("v"))

	if got := len(m.sheet.Items()); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
	out := xansi.Strip(m.View())
	for _, want := range []string{"Alice", "5 minutes ago", "Bob", "just now"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in sheet:\n%s", want, out)
		}
	}
}

func TestViewer_ViewersSheetLoadsUnknownViewers(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := listingSource{
		MockSource:       mock_story.NewMockSource(ctrl),
		MockViewerLister: mock_story.NewMockViewerLister(ctrl),
	}
	src.MockViewerLister.EXPECT().ListViewers(gomock.Any(), "s3").
		Return([]model.Viewer{{ID: "alice", Name: "Alice", ViewedAt: t0.Add(-5 * time.Minute)}}, nil)

	stories := testStories()
	stories[2].Viewers = nil
	m, _ := newTestViewer(t, src, story.Config{TargetID: "s3"})
	m = load(t, m, stories)

	m, cmd := update(t, m, keyRunes("v"))
	if got := m.session.SheetState(); got != story.SheetLoading {
		t.Fatalf("expected loading sheet, got %s", got)
	}
	if out := xansi.Strip(m.View()); !strings.Contains(out, "Loading viewers") {
		t.Fatalf("expected loading state, got:\n%s", out)
	}

	var loaded *viewersLoadedMsg
	for _, msg := range runCmds(cmd) {
		if vl, ok := msg.(viewersLoadedMsg); ok {
			loaded = &vl
		}
	}
	if loaded == nil {
		t.Fatalf("expected opening the sheet to look viewers up")
	}
	m, _ = update(t, m, *loaded)
	if got := m.session.SheetState(); got != story.SheetList {
		t.Fatalf("expected loaded viewers, got %s", got)
	}
	if out := xansi.Strip(m.View()); !strings.Contains(out, "Alice") {
		t.Fatalf("expected Alice in sheet:\n%s", out)
	}

	// A late answer for a sheet that has closed is dropped.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	m, _ = update(t, m, *loaded)
	if m.session.SheetState() != story.SheetClosed || !m.session.Running() {
		t.Fatalf("expected late viewers not to reopen the sheet")
	}
}

func TestViewer_ViewersLookupFailureClosesSheet(t *testing.T) {
	stories := testStories()
	stories[2].Viewers = nil
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s3"})
	m = load(t, m, stories)

	m, _ = update(t, m, keyRunes("v"))
	m, _ = update(t, m, viewersLoadedMsg{storyID: "s3", err: errors.New("offline")})
	if m.session.SheetState() != story.SheetClosed || !m.session.Running() {
		t.Fatalf("expected failed lookup to close the sheet and resume")
	}
	if !strings.Contains(m.minibufferText, "offline") {
		t.Fatalf("expected the failure in the minibuffer, got %q", m.minibufferText)
	}
}

func TestViewer_DeleteOwnStory(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_story.NewMockSource(ctrl)
	gomock.InOrder(
		src.EXPECT().DeleteStory(gomock.Any(), "s3").Return(nil),
		src.EXPECT().FetchStories(gomock.Any()).Return(testStories()[:2], nil),
	)

	m, _ := newTestViewer(t, src, story.Config{TargetID: "s3"})
	m = load(t, m, testStories())

	m, _ = update(t, m, keyRunes("d"))
	if !m.session.ConfirmingDelete() || m.session.Running() {
		t.Fatalf("expected confirmation prompt holding playback")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.session.Deleting() || cmd == nil {
		t.Fatalf("expected delete in flight")
	}
	m2, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if again != nil {
		t.Fatalf("expected repeated confirmation to be ignored")
	}
	m = m2

	m, cmd = update(t, m, cmd())
	if !isQuit(cmd) || !m.result.Exited {
		t.Fatalf("expected exit after a successful delete")
	}
	if got := len(m.session.Groups()); got != 1 {
		t.Fatalf("expected reloaded groups, got %d", got)
	}
}

func TestViewer_DeleteFailureKeepsPosition(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_story.NewMockSource(ctrl)
	src.EXPECT().DeleteStory(gomock.Any(), "s3").Return(errors.New("offline"))

	m, _ := newTestViewer(t, src, story.Config{TargetID: "s3"})
	m = load(t, m, testStories())

	m, _ = update(t, m, keyRunes("d"))
	m, cmd := update(t, m, keyRunes("y"))
	m, _ = update(t, m, cmd())

	if m.session.Exited() || m.session.Deleting() {
		t.Fatalf("expected viewer to stay open after a failed delete")
	}
	if got := currentID(m); got != "s3" {
		t.Fatalf("expected position unchanged, got %q", got)
	}
	if len(m.session.Groups()) != 2 {
		t.Fatalf("expected story list untouched")
	}
	if !strings.Contains(m.minibufferText, "Delete failed") {
		t.Fatalf("expected failure notification, got %q", m.minibufferText)
	}
	if !m.session.Running() {
		t.Fatalf("expected playback to resume")
	}
}

func TestViewer_DeleteAndViewersUnavailableOnOthersStories(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())

	m, _ = update(t, m, keyRunes("d"))
	m, _ = update(t, m, keyRunes("v"))
	if m.session.ConfirmingDelete() || m.session.SheetState() != story.SheetClosed {
		t.Fatalf("expected owner-only actions to be ignored")
	}
}

func TestViewer_LikeIsLocalOnly(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())

	m, _ = update(t, m, keyRunes("L"))
	if !m.session.Liked("s1") {
		t.Fatalf("expected like toggled")
	}
	if !strings.Contains(xansi.Strip(m.View()), "liked") {
		t.Fatalf("expected liked marker in view")
	}
	m, _ = update(t, m, keyRunes("L"))
	if m.session.Liked("s1") {
		t.Fatalf("expected like toggled off")
	}
}

func TestViewer_CreateAnotherExitsWithRequest(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{TargetID: "s3"})
	m = load(t, m, testStories())

	m, cmd := update(t, m, keyRunes("n"))
	if !isQuit(cmd) || !m.result.CreateRequested {
		t.Fatalf("expected create request, got %+v", m.result)
	}
}

func TestViewer_CopyDeepLink(t *testing.T) {
	var copied string
	prev := copyToClipboard
	copyToClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { copyToClipboard = prev })

	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())
	m, _ = update(t, m, keyRunes("y"))

	if copied != "storyview s1" {
		t.Fatalf("expected deep link, got %q", copied)
	}
	if !strings.Contains(m.minibufferText, "storyview s1") {
		t.Fatalf("expected confirmation, got %q", m.minibufferText)
	}
	m, _ = update(t, m, minibufferClearMsg{seq: m.minibufferSeq})
	if m.minibufferText != "" {
		t.Fatalf("expected minibuffer to clear")
	}
}

func TestViewer_TerminalScreens(t *testing.T) {
	cases := []struct {
		name    string
		cfg     story.Config
		stories []model.Story
		err     error
		want    string
		screen  story.Screen
	}{
		{"not found", story.Config{TargetID: "gone"}, testStories(), nil, "no longer available", story.ScreenNotFound},
		{"empty", story.Config{}, []model.Story{}, nil, "No stories to show", story.ScreenEmpty},
		{"load error", story.Config{}, nil, errors.New("network down"), "Couldn't load stories", story.ScreenLoadError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestViewer(t, nil, tc.cfg)
			m, _ = update(t, m, storiesLoadedMsg{stories: tc.stories, err: tc.err})
			if got := m.session.Screen(); got != tc.screen {
				t.Fatalf("expected %s, got %s", tc.screen, got)
			}
			if out := xansi.Strip(m.View()); !strings.Contains(out, tc.want) {
				t.Fatalf("expected %q, got:\n%s", tc.want, out)
			}
			m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
			if m.session.Exited() {
				t.Fatalf("expected navigation to be ignored")
			}
			_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyDown})
			if !isQuit(cmd) {
				t.Fatalf("expected exit to be available")
			}
		})
	}
}

func TestViewer_RetryAfterLoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_story.NewMockSource(ctrl)
	src.EXPECT().FetchStories(gomock.Any()).Return(testStories(), nil)

	m, _ := newTestViewer(t, src, story.Config{})
	m, _ = update(t, m, storiesLoadedMsg{err: errors.New("timeout")})

	m, cmd := update(t, m, keyRunes("r"))
	if m.session.Screen() != story.ScreenLoading || cmd == nil {
		t.Fatalf("expected retry to re-enter loading")
	}
	m, _ = update(t, m, cmd())
	if m.session.Screen() != story.ScreenActive {
		t.Fatalf("expected active after retry, got %s", m.session.Screen())
	}
}

func TestViewer_CloseReleasesMedia(t *testing.T) {
	m, _ := newTestViewer(t, nil, story.Config{})
	m = load(t, m, testStories())
	m, r := deliverMedia(t, m)

	m.close()
	if r.closed != 1 {
		t.Fatalf("expected media closed on unmount")
	}
	if m.session.Running() {
		t.Fatalf("expected playback stopped on unmount")
	}
}

func TestRenderSegments(t *testing.T) {
	got := xansi.Strip(renderSegments([]float64{1, 0.5, 0}, 11))
	if got != "━━━ ━━─ ───" {
		t.Fatalf("unexpected segments %q", got)
	}
	if renderSegments(nil, 10) != "" {
		t.Fatalf("expected no segments for an empty group")
	}
}
