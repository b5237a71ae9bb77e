package story

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type driverHarness struct {
	t      *testing.T
	clock  *clockwork.FakeClock
	driver *Driver
	events chan Event
}

func newDriverHarness(t *testing.T) *driverHarness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(t0)
	d := NewDriver(NewSession(Config{Duration: 5 * time.Second}), clock)
	h := &driverHarness{t: t, clock: clock, driver: d, events: make(chan Event, 16)}
	d.OnEvent(func(ev Event) { h.events <- ev })
	t.Cleanup(d.Close)
	return h
}

func (h *driverHarness) waitTimer() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(h.t, h.clock.BlockUntilContext(ctx, 1))
}

func (h *driverHarness) next() Event {
	h.t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func (h *driverHarness) quiet() {
	h.t.Helper()
	select {
	case ev := <-h.events:
		h.t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDriver_AutoAdvancesThenExitsOnce(t *testing.T) {
	h := newDriverHarness(t)
	require.Equal(t, ScreenActive, h.driver.Load(scenarioStories(), nil))

	h.waitTimer()
	h.clock.Advance(5 * time.Second)
	ev := h.next()
	assert.Equal(t, EventMoved, ev.Kind)
	assert.Equal(t, "s2", ev.StoryID)

	h.waitTimer()
	h.clock.Advance(5 * time.Second)
	assert.Equal(t, "s3", h.next().StoryID)

	h.waitTimer()
	h.clock.Advance(5 * time.Second)
	assert.Equal(t, EventExit, h.next().Kind)

	h.clock.Advance(time.Minute)
	h.quiet()
}

func TestDriver_UserNavigationCancelsPendingTimer(t *testing.T) {
	h := newDriverHarness(t)
	h.driver.Load(scenarioStories(), nil)

	h.clock.Advance(4900 * time.Millisecond)
	ev := h.driver.Apply(IntentNext)
	require.Equal(t, "s2", ev.StoryID)
	assert.Equal(t, "s2", h.next().StoryID, "user transitions reach the sink too")

	// The timer armed for s1 would have fired here.
	h.clock.Advance(200 * time.Millisecond)
	h.quiet()
	h.driver.View(func(s *Session) {
		assert.Equal(t, Position{Group: 0, Story: 1}, s.Position())
	})

	h.clock.Advance(4800 * time.Millisecond)
	assert.Equal(t, "s3", h.next().StoryID)
}

func TestDriver_PauseRestartsFullDuration(t *testing.T) {
	h := newDriverHarness(t)
	h.driver.Load(scenarioStories(), nil)

	h.clock.Advance(3 * time.Second)
	h.driver.SetPause(SourceHold, true)
	h.clock.Advance(time.Minute)
	h.quiet()

	h.driver.SetPause(SourceHold, false)
	h.driver.View(func(s *Session) { assert.Zero(t, s.Progress()) })

	h.clock.Advance(4 * time.Second)
	h.quiet()
	h.clock.Advance(time.Second)
	assert.Equal(t, "s2", h.next().StoryID)
}

func TestDriver_CloseStopsTimer(t *testing.T) {
	h := newDriverHarness(t)
	h.driver.Load(scenarioStories(), nil)
	h.driver.Close()

	h.clock.Advance(time.Hour)
	h.quiet()
	assert.Equal(t, EventNone, h.driver.Apply(IntentNext).Kind)
}

func TestDriver_LatestSinkWins(t *testing.T) {
	h := newDriverHarness(t)
	h.driver.Load(scenarioStories(), nil)

	second := make(chan Event, 1)
	h.driver.OnEvent(func(ev Event) { second <- ev })

	h.clock.Advance(5 * time.Second)
	select {
	case ev := <-second:
		assert.Equal(t, "s2", ev.StoryID)
	case <-time.After(2 * time.Second):
		t.Fatal("replacement sink was not used")
	}
	h.quiet()
}

func TestDriver_LoadErrorArmsNothing(t *testing.T) {
	h := newDriverHarness(t)
	assert.Equal(t, ScreenLoadError, h.driver.Load(nil, context.DeadlineExceeded))
	h.clock.Advance(time.Hour)
	h.quiet()
}
