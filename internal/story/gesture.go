package story

import "math"

// Intent is what a gesture asks the viewer to do.
type Intent int

const (
	IntentNone Intent = iota
	IntentPrevious
	IntentNext
	IntentExit
)

func (i Intent) String() string {
	switch i {
	case IntentPrevious:
		return "previous"
	case IntentNext:
		return "next"
	case IntentExit:
		return "exit"
	default:
		return "none"
	}
}

const (
	DefaultSwipeThreshold = 50.0
	DefaultTapSlop        = 10.0
)

type Point struct {
	X float64
	Y float64
}

// ClassifyTap maps a tap to previous (left half) or next (right half).
func ClassifyTap(x, width float64) Intent {
	if width <= 0 {
		return IntentNone
	}
	if x < width/2 {
		return IntentPrevious
	}
	return IntentNext
}

// ClassifySwipe classifies a released drag by its dominant axis. Right swipes
// go back, left swipes go forward, down swipes exit. Up swipes and drags that
// do not exceed threshold do nothing.
func ClassifySwipe(start, end Point, threshold float64) Intent {
	dx := end.X - start.X
	dy := end.Y - start.Y
	if math.Abs(dx) > math.Abs(dy) {
		switch {
		case dx > threshold:
			return IntentPrevious
		case dx < -threshold:
			return IntentNext
		}
		return IntentNone
	}
	if dy > threshold {
		return IntentExit
	}
	return IntentNone
}

// Gestures classifies a full press/release pair.
type Gestures struct {
	Threshold float64
	TapSlop   float64
}

func DefaultGestures() Gestures {
	return Gestures{Threshold: DefaultSwipeThreshold, TapSlop: DefaultTapSlop}
}

// IsTap reports whether the pointer stayed within the tap slop.
func (g Gestures) IsTap(start, end Point) bool {
	return math.Abs(end.X-start.X) <= g.TapSlop && math.Abs(end.Y-start.Y) <= g.TapSlop
}

// Classify turns a release into an intent. Small movements count as a tap
// at the press location; anything larger is a swipe.
func (g Gestures) Classify(start, end Point, width float64) Intent {
	if g.IsTap(start, end) {
		return ClassifyTap(start.X, width)
	}
	return ClassifySwipe(start, end, g.Threshold)
}
