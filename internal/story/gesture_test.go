package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, IntentPrevious, ClassifyTap(10, 400))
	assert.Equal(t, IntentPrevious, ClassifyTap(199.9, 400))
	assert.Equal(t, IntentNext, ClassifyTap(200, 400))
	assert.Equal(t, IntentNext, ClassifyTap(399, 400))
	assert.Equal(t, IntentNone, ClassifyTap(10, 0))
}

func TestClassifySwipe(t *testing.T) {
	t.Parallel()

	o := Point{X: 200, Y: 300}
	tests := []struct {
		name string
		end  Point
		want Intent
	}{
		{name: "right swipe goes back", end: Point{X: 260, Y: 310}, want: IntentPrevious},
		{name: "left swipe goes forward", end: Point{X: 120, Y: 290}, want: IntentNext},
		{name: "down swipe exits", end: Point{X: 210, Y: 400}, want: IntentExit},
		{name: "up swipe is unbound", end: Point{X: 210, Y: 100}, want: IntentNone},
		{name: "exactly at threshold is a no-op", end: Point{X: 250, Y: 300}, want: IntentNone},
		{name: "below threshold both axes", end: Point{X: 230, Y: 330}, want: IntentNone},
		{name: "diagonal picks dominant vertical", end: Point{X: 260, Y: 380}, want: IntentExit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifySwipe(o, tt.end, DefaultSwipeThreshold))
		})
	}
}

func TestGestures_Classify(t *testing.T) {
	t.Parallel()

	g := DefaultGestures()

	assert.Equal(t, IntentPrevious, g.Classify(Point{X: 50, Y: 100}, Point{X: 55, Y: 104}, 400), "small jitter is a tap")
	assert.Equal(t, IntentNext, g.Classify(Point{X: 300, Y: 100}, Point{X: 300, Y: 100}, 400))
	assert.Equal(t, IntentNone, g.Classify(Point{X: 300, Y: 100}, Point{X: 330, Y: 100}, 400), "drag under threshold does nothing")
	assert.Equal(t, IntentNext, g.Classify(Point{X: 300, Y: 100}, Point{X: 200, Y: 100}, 400))
}
