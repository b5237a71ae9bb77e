package story

import (
	"sync"

	"storyview/internal/model"

	"github.com/jonboulle/clockwork"
)

// Driver hosts a Session without a UI loop. Timer completions and user
// intents are serialized through one mutex, so a completion racing a tap
// commits a single transition.
//
// At most one timer is armed, for the current playback generation. Every
// transition stops it before arming the next, and the timer reads its
// handler through a Latest slot rather than a captured closure.
type Driver struct {
	clock clockwork.Clock

	mu      sync.Mutex
	session *Session
	timer   clockwork.Timer
	closed  bool

	elapsed Latest[func(gen uint64)]
	sink    Latest[func(Event)]
}

func NewDriver(s *Session, clock clockwork.Clock) *Driver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	d := &Driver{clock: clock, session: s}
	d.elapsed.Store(d.onElapsed)
	return d
}

// OnEvent replaces the sink that receives committed transitions. The sink
// is called without the driver lock held.
func (d *Driver) OnEvent(fn func(Event)) {
	d.sink.Store(fn)
}

// Load feeds a fetch result to the session and starts playback if active.
func (d *Driver) Load(stories []model.Story, err error) Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session.Loaded(stories, err, d.clock.Now())
	d.rearmLocked()
	return d.session.Screen()
}

func (d *Driver) Apply(in Intent) Event {
	d.mu.Lock()
	ev := d.session.Apply(in, d.clock.Now())
	d.rearmLocked()
	d.mu.Unlock()

	d.publish(ev)
	return ev
}

func (d *Driver) SetPause(src PauseSource, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session.SetPause(src, on, d.clock.Now())
	d.rearmLocked()
}

// View runs fn with the session locked. fn must not call back into d.
func (d *Driver) View(fn func(s *Session)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.session)
}

// Close stops the timer and unmounts the session. No handler runs after
// Close returns.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
	d.session.Close()
}

func (d *Driver) onElapsed(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.session.Generation() {
		d.mu.Unlock()
		return
	}
	ev := d.session.Tick(gen, d.clock.Now())
	d.rearmLocked()
	d.mu.Unlock()

	d.publish(ev)
}

func (d *Driver) publish(ev Event) {
	if ev.Kind == EventNone {
		return
	}
	if fn, ok := d.sink.Load(); ok && fn != nil {
		fn(ev)
	}
}

func (d *Driver) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Driver) rearmLocked() {
	d.stopLocked()
	if d.closed || !d.session.Running() {
		return
	}
	gen := d.session.Generation()
	wait := d.session.Remaining(d.clock.Now())
	d.timer = d.clock.AfterFunc(wait, func() {
		if h, ok := d.elapsed.Load(); ok {
			h(gen)
		}
	})
}
