package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"storyview/internal/media"
	"storyview/internal/story"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	defaultFrameInterval = 50 * time.Millisecond
	defaultLongPress     = 400 * time.Millisecond
	defaultCellWidth     = 10
	defaultCellHeight    = 20

	minibufferAutoClearAfter = 3 * time.Second
)

// Options configures the viewer.
type Options struct {
	Source  story.Source
	Media   media.Opener
	Session story.Config

	Gestures      story.Gestures
	LongPress     time.Duration
	FrameInterval time.Duration
	// CellWidth and CellHeight scale mouse cells to the virtual pixels the
	// gesture thresholds are expressed in.
	CellWidth  int
	CellHeight int

	Logger *zap.Logger
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Gestures == (story.Gestures{}) {
		o.Gestures = story.DefaultGestures()
	}
	if o.LongPress <= 0 {
		o.LongPress = defaultLongPress
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = defaultFrameInterval
	}
	if o.CellWidth <= 0 {
		o.CellWidth = defaultCellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = defaultCellHeight
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Media == nil {
		o.Media = media.Loader{}
	}
	return o
}

// Result is what the viewer reports after it closes.
type Result struct {
	Exited      bool   `json:"exited"`
	LastStoryID string `json:"lastStoryId,omitempty"`
	// CreateRequested is set when the owner asked to create another story.
	CreateRequested bool `json:"createRequested,omitempty"`
}

type pressState struct {
	seq   int
	row   int
	start story.Point
	last  story.Point
	moved bool
	held  bool
}

type viewerModel struct {
	ctx     context.Context
	opts    Options
	log     *zap.Logger
	session *story.Session

	width  int
	height int

	keys     keyMap
	help     help.Model
	showHelp bool

	reply textinput.Model
	sheet list.Model

	// The media resource belongs to mediaStoryID only.
	res          media.Resource
	mediaStoryID string
	mediaSeq     int
	mediaErr     string

	// framedGen is the generation the running frame chain was started for.
	framedGen uint64

	press    *pressState
	pressSeq int

	confirmFocus confirmModalFocus

	minibufferText string
	minibufferSeq  int

	viewed map[string]bool
	result Result
}

func newViewerModel(ctx context.Context, opts Options) viewerModel {
	opts = opts.withDefaults()

	ti := textinput.New()
	ti.Placeholder = "Send a reply…"
	ti.Prompt = ""
	ti.CharLimit = 500

	sheet := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	sheet.Title = "Viewers"
	sheet.SetShowHelp(false)
	sheet.SetShowStatusBar(false)
	sheet.SetFilteringEnabled(false)
	sheet.DisableQuitKeybindings()

	return viewerModel{
		ctx:     ctx,
		opts:    opts,
		log:     opts.Logger,
		session: story.NewSession(opts.Session),
		keys:    defaultKeyMap(),
		help:    help.New(),
		reply:   ti,
		sheet:   sheet,
		viewed:  map[string]bool{},
	}
}

func (m viewerModel) Init() tea.Cmd {
	return m.fetchCmd()
}

func (m viewerModel) now() time.Time { return m.opts.Now() }

func (m viewerModel) fetchCmd() tea.Cmd {
	src, ctx := m.opts.Source, m.ctx
	return func() tea.Msg {
		stories, err := src.FetchStories(ctx)
		return storiesLoadedMsg{stories: stories, err: err}
	}
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.sheet.SetSize(modalBodyWidth(msg.Width), maxInt(3, msg.Height/2))
		return m, nil

	case storiesLoadedMsg:
		m.session.Loaded(msg.stories, msg.err, m.now())
		if msg.err != nil {
			m.log.Warn("fetch stories failed", zap.Error(msg.err))
		} else {
			m.log.Info("stories loaded",
				zap.Int("count", len(msg.stories)),
				zap.Stringer("screen", m.session.Screen()))
		}
		cmd := m.sync()
		return m, cmd

	case frameMsg:
		if msg.gen != m.session.Generation() {
			return m, nil
		}
		ev := m.session.Tick(msg.gen, msg.at)
		if ev.Kind != story.EventNone {
			return m.handleEvent(ev)
		}
		if m.session.Running() {
			return m, m.frameCmd(msg.gen)
		}
		return m, nil

	case mediaLoadedMsg:
		if msg.seq != m.mediaSeq || msg.storyID != m.mediaStoryID || m.session.Exited() {
			// The story is no longer active; its resource is never shown.
			if msg.res != nil {
				_ = msg.res.Close()
			}
			return m, nil
		}
		if msg.err != nil {
			m.mediaErr = msg.err.Error()
			m.log.Warn("media load failed", zap.String("story", msg.storyID), zap.Error(msg.err))
			return m, nil
		}
		m.res = msg.res
		return m, nil

	case longPressMsg:
		if m.press == nil || m.press.seq != msg.seq || m.press.moved {
			return m, nil
		}
		m.press.held = true
		m.session.SetPause(story.SourceHold, true, m.now())
		cmd := m.sync()
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case deleteDoneMsg:
		if msg.err != nil {
			m.log.Warn("delete story failed", zap.String("story", msg.storyID), zap.Error(msg.err))
			m.session.DeleteFailed(msg.err, m.now())
			cmd := tea.Batch(m.sync(), m.showMinibuffer("Delete failed: "+msg.err.Error()))
			return m, cmd
		}
		if msg.reloadErr != nil {
			m.log.Warn("reload after delete failed", zap.Error(msg.reloadErr))
		}
		m.log.Info("story deleted", zap.String("story", msg.storyID))
		return m.handleEvent(m.session.DeleteSucceeded(msg.stories, msg.reloadErr))

	case replyDoneMsg:
		if msg.err != nil {
			m.log.Warn("reply failed", zap.String("story", msg.storyID), zap.Error(msg.err))
			cmd := m.showMinibuffer("Reply failed: " + msg.err.Error())
			return m, cmd
		}
		cmd := m.showMinibuffer("Reply sent")
		return m, cmd

	case viewersLoadedMsg:
		if msg.err != nil {
			m.log.Warn("load viewers failed", zap.String("story", msg.storyID), zap.Error(msg.err))
			if m.session.SheetState() == story.SheetLoading && m.session.SheetStoryID() == msg.storyID {
				m.session.CloseViewers(m.now())
			}
			cmd := tea.Batch(m.sync(), m.showMinibuffer("Couldn't load viewers: "+msg.err.Error()))
			return m, cmd
		}
		if m.session.ViewersLoaded(msg.storyID, msg.viewers) {
			m.refreshSheet()
		}
		return m, nil

	case viewMarkedMsg:
		if msg.err != nil {
			m.log.Warn("record view failed", zap.String("story", msg.storyID), zap.Error(msg.err))
		}
		return m, nil

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m viewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	if msg.String() == "ctrl+c" {
		return m.handleEvent(m.session.Apply(story.IntentExit, now))
	}
	switch {
	case m.reply.Focused():
		return m.updateReply(msg)
	case m.session.Deleting():
		return m, nil
	case m.session.ConfirmingDelete():
		return m.updateConfirm(msg)
	case m.session.SheetState() != story.SheetClosed:
		return m.updateSheet(msg)
	case m.showHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	keys := m.activeKeys()
	switch {
	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, keys.Exit):
		return m.handleEvent(m.session.Apply(story.IntentExit, now))
	case key.Matches(msg, keys.Retry):
		if m.session.Retry() {
			return m, m.fetchCmd()
		}
		return m, nil
	}

	if m.session.Screen() != story.ScreenActive {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Prev):
		return m.handleEvent(m.session.Apply(story.IntentPrevious, now))
	case key.Matches(msg, keys.Next):
		return m.handleEvent(m.session.Apply(story.IntentNext, now))
	case key.Matches(msg, keys.Hold):
		m.session.SetPause(story.SourceHold, !m.session.Holding(), now)
		cmd := m.sync()
		return m, cmd
	case key.Matches(msg, keys.Reply):
		m.reply.SetValue("")
		m.reply.Width = maxInt(10, m.width-6)
		m.session.SetPause(story.SourceInput, true, now)
		cmd := tea.Batch(m.reply.Focus(), m.sync())
		return m, cmd
	case key.Matches(msg, keys.Like):
		liked := m.session.ToggleLike()
		if liked {
			cmd := m.showMinibuffer("Liked")
			return m, cmd
		}
		cmd := m.showMinibuffer("Like removed")
		return m, cmd
	case key.Matches(msg, keys.Viewers):
		cmd := m.openViewers()
		return m, cmd
	case key.Matches(msg, keys.Delete):
		if err := m.session.RequestDelete(now); err != nil {
			cmd := m.showMinibuffer(err.Error())
			return m, cmd
		}
		m.confirmFocus = confirmFocusCancel
		cmd := m.sync()
		return m, cmd
	case key.Matches(msg, keys.Create):
		m.result.CreateRequested = true
		return m.handleEvent(m.session.Exit())
	case key.Matches(msg, keys.Copy):
		st, ok := m.session.Current()
		if !ok {
			return m, nil
		}
		link := DeepLink(st.ID)
		if err := copyToClipboard(link); err != nil {
			cmd := m.showMinibuffer("Copy failed: " + err.Error())
			return m, cmd
		}
		cmd := m.showMinibuffer("Copied: " + link)
		return m, cmd
	}
	return m, nil
}

func (m viewerModel) activeKeys() keyMap {
	switch m.session.Screen() {
	case story.ScreenActive:
		return m.keys.forStory(m.session.IsOwn())
	case story.ScreenLoadError:
		return m.keys.forTerminal(true)
	default:
		return m.keys.forTerminal(false)
	}
}

func (m viewerModel) updateReply(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m = m.blurReply()
		cmd := m.sync()
		return m, cmd
	case "enter":
		body := strings.TrimSpace(m.reply.Value())
		st, ok := m.session.Current()
		m = m.blurReply()
		if body == "" || !ok {
			cmd := m.sync()
			return m, cmd
		}
		cmd := tea.Batch(m.sync(), m.replyCmd(st.ID, body))
		return m, cmd
	}
	var cmd tea.Cmd
	m.reply, cmd = m.reply.Update(msg)
	return m, cmd
}

func (m viewerModel) blurReply() viewerModel {
	m.reply.Blur()
	m.reply.SetValue("")
	m.session.SetPause(story.SourceInput, false, m.now())
	return m
}

func (m viewerModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.toggle()
		return m, nil
	case "esc", "ctrl+g", "n", "q":
		m.session.CancelDelete(m.now())
		cmd := m.sync()
		return m, cmd
	case "y":
		m.confirmFocus = confirmFocusConfirm
		return m.confirmDelete()
	case "enter":
		if m.confirmFocus != confirmFocusConfirm {
			m.session.CancelDelete(m.now())
			cmd := m.sync()
			return m, cmd
		}
		return m.confirmDelete()
	}
	return m, nil
}

func (m viewerModel) confirmDelete() (tea.Model, tea.Cmd) {
	id, ok := m.session.ConfirmDelete()
	if !ok {
		return m, nil
	}
	return m, m.deleteCmd(id)
}

func (m viewerModel) updateSheet(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "v", "ctrl+g":
		m.session.CloseViewers(m.now())
		cmd := m.sync()
		return m, cmd
	}
	var cmd tea.Cmd
	m.sheet, cmd = m.sheet.Update(msg)
	return m, cmd
}

// handleEvent commits the side effects of a transition.
func (m viewerModel) handleEvent(ev story.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case story.EventExit:
		m.log.Info("viewer exit", zap.String("story", ev.StoryID))
		m.result.Exited = true
		m.result.LastStoryID = ev.StoryID
		m.releaseMedia()
		m.dropPress()
		return m, tea.Quit
	case story.EventMoved:
		m.log.Debug("moved",
			zap.String("story", ev.StoryID),
			zap.Int("group", ev.Position.Group),
			zap.Int("index", ev.Position.Story))
		if m.reply.Focused() {
			m = m.blurReply()
		}
		m.dropPress()
	}
	cmd := m.sync()
	return m, cmd
}

// sync swaps media for the active story and keeps one frame chain running
// for the current playback generation.
func (m *viewerModel) sync() tea.Cmd {
	var cmds []tea.Cmd
	cmds = append(cmds, m.syncMedia())
	if m.session.Running() {
		if gen := m.session.Generation(); gen != m.framedGen {
			m.framedGen = gen
			cmds = append(cmds, m.frameCmd(gen))
		}
	}
	return tea.Batch(cmds...)
}

func (m *viewerModel) syncMedia() tea.Cmd {
	want := ""
	st, ok := m.session.Current()
	if ok && !m.session.Exited() {
		want = st.ID
	}
	if want == m.mediaStoryID {
		return nil
	}
	m.releaseMedia()
	m.mediaStoryID = want
	if want == "" {
		return nil
	}

	m.mediaSeq++
	seq := m.mediaSeq
	opener, ctx := m.opts.Media, m.ctx
	load := func() tea.Msg {
		res, err := opener.Open(ctx, st.Media)
		return mediaLoadedMsg{seq: seq, storyID: st.ID, res: res, err: err}
	}
	return tea.Batch(load, m.markViewedCmd())
}

func (m *viewerModel) releaseMedia() {
	if m.res != nil {
		if err := m.res.Close(); err != nil && !errors.Is(err, media.ErrClosed) {
			m.log.Warn("media close failed", zap.String("story", m.mediaStoryID), zap.Error(err))
		}
		m.res = nil
	}
	m.mediaErr = ""
	m.mediaStoryID = ""
}

// close unmounts the viewer: playback stops and the media resource is freed.
func (m *viewerModel) close() {
	m.session.Close()
	m.releaseMedia()
}

func (m viewerModel) frameCmd(gen uint64) tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, at: t}
	})
}

// dropPress forgets the pointer press. A long press also lets go of its hold.
func (m *viewerModel) dropPress() {
	if m.press != nil && m.press.held {
		m.session.SetPause(story.SourceHold, false, m.now())
	}
	m.press = nil
}

// openViewers shows the sheet for the own story on screen and looks its
// viewers up when the story arrived without them.
func (m *viewerModel) openViewers() tea.Cmd {
	if !m.session.OpenViewers(m.now()) {
		return m.sync()
	}
	m.refreshSheet()
	return tea.Batch(m.sync(), m.viewersCmd())
}

func (m viewerModel) viewersCmd() tea.Cmd {
	lister, ok := m.opts.Source.(story.ViewerLister)
	if !ok || m.session.SheetState() != story.SheetLoading {
		return nil
	}
	id, ctx := m.session.SheetStoryID(), m.ctx
	return func() tea.Msg {
		viewers, err := lister.ListViewers(ctx, id)
		return viewersLoadedMsg{storyID: id, viewers: viewers, err: err}
	}
}

func (m viewerModel) markViewedCmd() tea.Cmd {
	rec, ok := m.opts.Source.(story.ViewRecorder)
	st, cur := m.session.Current()
	if !ok || !cur || m.session.IsOwn() || m.viewed[st.ID] {
		return nil
	}
	m.viewed[st.ID] = true
	ctx := m.ctx
	return func() tea.Msg {
		return viewMarkedMsg{storyID: st.ID, err: rec.MarkViewed(ctx, st.ID)}
	}
}

func (m viewerModel) deleteCmd(id string) tea.Cmd {
	src, ctx := m.opts.Source, m.ctx
	return func() tea.Msg {
		if err := src.DeleteStory(ctx, id); err != nil {
			return deleteDoneMsg{storyID: id, err: err}
		}
		stories, err := src.FetchStories(ctx)
		return deleteDoneMsg{storyID: id, stories: stories, reloadErr: err}
	}
}

func (m *viewerModel) replyCmd(storyID, body string) tea.Cmd {
	r, ok := m.opts.Source.(story.Replier)
	if !ok {
		return m.showMinibuffer("Replies are not supported here")
	}
	ctx := m.ctx
	return func() tea.Msg {
		return replyDoneMsg{storyID: storyID, err: r.Reply(ctx, storyID, body)}
	}
}

func (m *viewerModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferSeq++
	seq := m.minibufferSeq
	return tea.Tick(minibufferAutoClearAfter, func(time.Time) tea.Msg {
		return minibufferClearMsg{seq: seq}
	})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
