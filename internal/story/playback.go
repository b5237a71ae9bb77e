package story

import "time"

// DefaultDuration is how long one story plays before advancing.
const DefaultDuration = 5 * time.Second

type PlaybackState int

const (
	PlaybackStopped PlaybackState = iota
	PlaybackRunning
	PlaybackPaused
	PlaybackCompleted
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackRunning:
		return "running"
	case PlaybackPaused:
		return "paused"
	case PlaybackCompleted:
		return "completed"
	default:
		return "stopped"
	}
}

// Playback owns the 0..1 progress of the active story.
//
// Every state change bumps the generation. Hosts tag their timers with the
// generation current when the timer was armed; Tick ignores anything older,
// so a cancelled animation can never complete.
//
// Pausing does not keep elapsed time: resuming restarts the story from 0.
type Playback struct {
	duration  time.Duration
	state     PlaybackState
	startedAt time.Time
	progress  float64
	gen       uint64
}

func NewPlayback(d time.Duration) *Playback {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Playback{duration: d}
}

func (p *Playback) Duration() time.Duration { return p.duration }
func (p *Playback) State() PlaybackState { return p.state }
func (p *Playback) Progress() float64 { return p.progress }
func (p *Playback) Generation() uint64 { return p.gen }
func (p *Playback) Running() bool { return p.state == PlaybackRunning }

// Restart enters a new story at progress 0. If the gate is closed the story
// waits in Paused until Resume.
func (p *Playback) Restart(now time.Time, paused bool) uint64 {
	p.gen++
	p.progress = 0
	p.startedAt = now
	if paused {
		p.state = PlaybackPaused
	} else {
		p.state = PlaybackRunning
	}
	return p.gen
}

// Pause stops the animation in place. Any armed timer becomes stale.
func (p *Playback) Pause() uint64 {
	if p.state == PlaybackRunning {
		p.gen++
		p.state = PlaybackPaused
	}
	return p.gen
}

// Resume starts the full duration again from progress 0.
func (p *Playback) Resume(now time.Time) uint64 {
	if p.state != PlaybackPaused || p.progress >= 1 {
		return p.gen
	}
	p.gen++
	p.progress = 0
	p.startedAt = now
	p.state = PlaybackRunning
	return p.gen
}

// Tick advances progress for a timer armed at generation gen. It returns
// true exactly once, when the story completes.
func (p *Playback) Tick(gen uint64, now time.Time) bool {
	if gen != p.gen || p.state != PlaybackRunning {
		return false
	}
	elapsed := now.Sub(p.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed < p.duration {
		p.progress = float64(elapsed) / float64(p.duration)
		return false
	}
	p.progress = 1
	p.state = PlaybackCompleted
	p.gen++
	return true
}

// Remaining is the time left until completion, assuming the gate stays open.
func (p *Playback) Remaining(now time.Time) time.Duration {
	if p.state != PlaybackRunning {
		return 0
	}
	left := p.duration - now.Sub(p.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Stop cancels playback for good (viewer unmounted).
func (p *Playback) Stop() {
	p.gen++
	p.state = PlaybackStopped
}

// Segments returns the fill ratio of each progress segment in a group of
// count stories where current is playing at progress.
func Segments(count, current int, progress float64) []float64 {
	if count <= 0 {
		return nil
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	out := make([]float64, count)
	for i := range out {
		switch {
		case i < current:
			out[i] = 1
		case i == current:
			out[i] = progress
		}
	}
	return out
}
