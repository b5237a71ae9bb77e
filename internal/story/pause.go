package story

// PauseSource is one independent reason to hold playback.
type PauseSource uint8

const (
	// SourceHold is set while the screen is pressed and held.
	SourceHold PauseSource = 1 << iota
	// SourceInput is set while the reply field has focus.
	SourceInput
	// SourceModal is set while a sheet or confirmation covers the story.
	SourceModal
)

func (s PauseSource) String() string {
	switch s {
	case SourceHold:
		return "hold"
	case SourceInput:
		return "input"
	case SourceModal:
		return "modal"
	default:
		return "unknown"
	}
}

// PauseArbiter merges pause sources into a single gate. Playback only looks
// at Paused, never at individual sources.
type PauseArbiter struct {
	active PauseSource
}

// Set turns src on or off and reports whether the combined gate flipped.
func (a *PauseArbiter) Set(src PauseSource, on bool) bool {
	before := a.Paused()
	if on {
		a.active |= src
	} else {
		a.active &^= src
	}
	return before != a.Paused()
}

func (a *PauseArbiter) Paused() bool { return a.active != 0 }

func (a *PauseArbiter) Has(src PauseSource) bool { return a.active&src != 0 }

func (a *PauseArbiter) Reset() { a.active = 0 }
