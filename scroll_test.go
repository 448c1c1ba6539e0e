package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testScroller() *EdgeScroller {
	return NewEdgeScroller(Rect{MaxX: 800, MaxY: 600}, DefaultConfig())
}

func TestEdgeScroller(t *testing.T) {
	cases := []struct {
		name     string
		pointer  Vec3
		dt       time.Duration
		velocity float64
		offset   float64
	}{
		{"left edge full step", Vec3{X: 50, Y: 300}, 100 * time.Millisecond, -500, -50},
		{"left edge eases in", Vec3{X: 50, Y: 300}, 50 * time.Millisecond, -250, -12.5},
		{"right edge", Vec3{X: 790, Y: 300}, 100 * time.Millisecond, 500, 50},
		{"middle", Vec3{X: 400, Y: 300}, 100 * time.Millisecond, 0, 0},
		{"on the threshold", Vec3{X: 100, Y: 300}, 100 * time.Millisecond, 0, 0},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			s := testScroller()

			s.Nudge(tt.pointer, tt.dt)

			assert.InDelta(t, tt.velocity, s.Velocity(), epsilon)
			assert.InDelta(t, tt.offset, s.Offset.X, epsilon)
		})
	}
}

func TestEdgeScrollerStopsOffEdge(t *testing.T) {
	s := testScroller()
	s.Nudge(Vec3{X: 10}, 50*time.Millisecond)
	s.Nudge(Vec3{X: 10}, 50*time.Millisecond)
	assert.True(t, s.Velocity() < -250)
	offset := s.Offset.X

	s.Nudge(Vec3{X: 400}, 50*time.Millisecond)

	assert.Equal(t, 0.0, s.Velocity())
	assert.Equal(t, offset, s.Offset.X)
}

func TestEdgeScrollerLimits(t *testing.T) {
	s := testScroller()
	s.MinX, s.MaxX = 0, 30

	s.Nudge(Vec3{X: 790}, 100*time.Millisecond)
	assert.InDelta(t, 30, s.Offset.X, epsilon)

	s.Nudge(Vec3{X: 10}, 100*time.Millisecond)
	s.Nudge(Vec3{X: 10}, 100*time.Millisecond)
	assert.InDelta(t, 0, s.Offset.X, epsilon)
}

func TestEdgeScrollerScreenToWorld(t *testing.T) {
	s := testScroller()
	s.Offset = Vec3{X: -120}

	assert.Equal(t, Vec3{X: -20, Y: 40}, s.ScreenToWorld(Vec3{X: 100, Y: 40}))
}
