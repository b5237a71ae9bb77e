package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"storyview/internal/store"
	"storyview/internal/story"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlayCmd(app *App) *cobra.Command {
	var storyID string
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play stories headlessly, reading intents from stdin",
		Long: `Play stories without a terminal UI.

Each stdin line is one intent:
  next | prev | exit | hold | release | focus | blur | like | retry | state
  tap X WIDTH
  swipe X1 Y1 X2 Y2

Every committed transition is written to stdout as one JSON object per line.
Playback ends when the viewer exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			userID, err := app.currentUser(ctx, st)
			if err != nil {
				return writeErr(cmd, err)
			}

			cfg := app.sessionConfig(userID, storyID)
			if duration > 0 {
				cfg.Duration = duration
			}
			p := &player{
				app:    app,
				source: store.Source{Store: st, UserID: userID, Now: app.now},
				out:    json.NewEncoder(cmd.OutOrStdout()),
				viewed: map[string]bool{},
				done:   make(chan struct{}),
			}
			return p.run(ctx, cfg, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&storyID, "story", "", "Start at this story id")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Override the story duration")

	return cmd
}

type playEvent struct {
	Event    string          `json:"event"`
	Screen   string          `json:"screen,omitempty"`
	StoryID  string          `json:"storyId,omitempty"`
	Position *story.Position `json:"position,omitempty"`
	Intent   string          `json:"intent,omitempty"`
	Paused   *bool           `json:"paused,omitempty"`
	Liked    *bool           `json:"liked,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type player struct {
	app    *App
	source store.Source
	driver *story.Driver

	mu     sync.Mutex
	out    *json.Encoder
	viewed map[string]bool

	once sync.Once
	done chan struct{}
}

func (p *player) run(ctx context.Context, cfg story.Config, in io.Reader) error {
	log := p.app.log.Named("play")

	p.driver = story.NewDriver(story.NewSession(cfg), clockwork.NewRealClock())
	defer p.driver.Close()
	p.driver.OnEvent(func(ev story.Event) { p.onEvent(ctx, ev) })

	p.load(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-p.done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case line, ok := <-lines:
			if !ok {
				return p.drain(ctx)
			}
			if err := p.handle(ctx, line); err != nil {
				log.Debug("bad intent", zap.String("line", line), zap.Error(err))
				p.emit(playEvent{Event: "error", Error: err.Error()})
			}
		}
	}
}

// drain runs after stdin closes. A running session plays out to its exit;
// anything that cannot advance on its own exits now.
func (p *player) drain(ctx context.Context) error {
	var running bool
	p.driver.View(func(s *story.Session) { running = s.Running() })
	if !running {
		p.driver.Apply(story.IntentExit)
		p.finish()
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return nil
	}
}

func (p *player) load(ctx context.Context) {
	stories, err := p.source.FetchStories(ctx)
	screen := p.driver.Load(stories, err)
	ev := playEvent{Event: "screen", Screen: screen.String()}
	if err != nil {
		ev.Error = err.Error()
	}
	if screen == story.ScreenActive {
		var id string
		var pos story.Position
		p.driver.View(func(s *story.Session) {
			cur, _ := s.Current()
			id, pos = cur.ID, s.Position()
		})
		ev.StoryID, ev.Position = id, &pos
		p.markViewed(ctx, id)
	}
	p.emit(ev)
}

func (p *player) handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	word := strings.ToLower(fields[0])
	switch word {
	case "next":
		return p.apply(story.IntentNext)
	case "prev", "previous":
		return p.apply(story.IntentPrevious)
	case "exit", "close":
		return p.apply(story.IntentExit)
	case "hold", "release":
		return p.pause(story.SourceHold, word == "hold")
	case "focus", "blur":
		return p.pause(story.SourceInput, word == "focus")
	case "like":
		var liked bool
		p.driver.View(func(s *story.Session) { liked = s.ToggleLike() })
		p.emit(playEvent{Event: "like", Liked: &liked})
		return nil
	case "retry":
		var ok bool
		p.driver.View(func(s *story.Session) { ok = s.Retry() })
		if !ok {
			return fmt.Errorf("nothing to retry")
		}
		p.load(ctx)
		return nil
	case "state":
		p.emit(p.snapshot())
		return nil
	case "tap":
		nums, err := parseFloats(fields[1:], 2)
		if err != nil {
			return fmt.Errorf("tap X WIDTH: %w", err)
		}
		return p.apply(story.ClassifyTap(nums[0], nums[1]))
	case "swipe":
		nums, err := parseFloats(fields[1:], 4)
		if err != nil {
			return fmt.Errorf("swipe X1 Y1 X2 Y2: %w", err)
		}
		start := story.Point{X: nums[0], Y: nums[1]}
		end := story.Point{X: nums[2], Y: nums[3]}
		return p.apply(story.ClassifySwipe(start, end, p.app.gestures().Threshold))
	}
	return fmt.Errorf("unknown intent %q", fields[0])
}

func (p *player) apply(in story.Intent) error {
	ev := p.driver.Apply(in)
	if ev.Kind == story.EventNone {
		p.emit(playEvent{Event: "none", Intent: in.String()})
	}
	return nil
}

func (p *player) pause(src story.PauseSource, on bool) error {
	p.driver.SetPause(src, on)
	ev := p.snapshot()
	ev.Event = "pause"
	return p.emitErr(ev)
}

func (p *player) snapshot() playEvent {
	ev := playEvent{Event: "state"}
	p.driver.View(func(s *story.Session) {
		ev.Screen = s.Screen().String()
		paused := s.Paused()
		ev.Paused = &paused
		if cur, ok := s.Current(); ok {
			pos := s.Position()
			ev.StoryID, ev.Position = cur.ID, &pos
		}
	})
	return ev
}

// onEvent runs for every committed transition, from the stdin loop or the
// playback timer.
func (p *player) onEvent(ctx context.Context, ev story.Event) {
	pos := ev.Position
	p.emit(playEvent{Event: ev.Kind.String(), StoryID: ev.StoryID, Position: &pos})
	switch ev.Kind {
	case story.EventMoved:
		p.markViewed(ctx, ev.StoryID)
	case story.EventExit:
		p.finish()
	}
}

func (p *player) markViewed(ctx context.Context, storyID string) {
	if storyID == "" {
		return
	}
	var own bool
	p.driver.View(func(s *story.Session) { own = s.IsOwn() })
	if own {
		return
	}

	p.mu.Lock()
	seen := p.viewed[storyID]
	p.viewed[storyID] = true
	p.mu.Unlock()
	if seen {
		return
	}
	if err := p.source.MarkViewed(ctx, storyID); err != nil {
		p.app.log.Warn("mark viewed failed", zapStory(storyID), zap.Error(err))
	}
}

func (p *player) finish() {
	p.once.Do(func() { close(p.done) })
}

func (p *player) emit(ev playEvent) {
	_ = p.emitErr(ev)
}

func (p *player) emitErr(ev playEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Encode(ev)
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
