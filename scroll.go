package room

import (
	"math"
	"time"
)

// Scroller is the scroll surface a drag happens over: it maps screen
// points into the world and pans when asked.
type Scroller interface {
	ScreenToWorld(p Vec3) Vec3

	// Nudge is called every drag frame with the pointer in screen space.
	Nudge(pointer Vec3, dt time.Duration)
}

// EdgeScroller is a horizontally panning view that scrolls while the
// pointer sits near its left or right edge.
type EdgeScroller struct {
	// Offset is the world position of the view's screen origin
	Offset Vec3

	// Viewport is the screen space rect of the view
	Viewport Rect

	// MinX & MaxX bound Offset.X, unbounded unless MaxX > MinX
	MinX, MaxX float64

	Threshold float64 // px from an edge where scrolling starts
	Speed     float64 // px per second at full speed

	velocity float64
}

// NewEdgeScroller returns a scroller over viewport using the config's
// threshold & speed.
func NewEdgeScroller(viewport Rect, cfg *Config) *EdgeScroller {
	return &EdgeScroller{
		Viewport:  viewport,
		Threshold: cfg.EdgeThreshold,
		Speed:     cfg.ScrollSpeed,
	}
}

// Velocity is the current pan speed, negative when revealing the left
func (e *EdgeScroller) Velocity() float64 {
	return e.velocity
}

// ScreenToWorld implements Scroller
func (e *EdgeScroller) ScreenToWorld(p Vec3) Vec3 {
	return p.Add(e.Offset)
}

// Nudge implements Scroller. Velocity eases towards the target so the view
// doesn't jolt; leaving the edge stops it dead.
func (e *EdgeScroller) Nudge(pointer Vec3, dt time.Duration) {
	target := 0.0
	switch {
	case pointer.X < e.Viewport.MinX+e.Threshold:
		target = -e.Speed
	case pointer.X > e.Viewport.MaxX-e.Threshold:
		target = e.Speed
	}

	if target == 0 {
		e.velocity = 0
		return
	}

	t := math.Min(1, dt.Seconds()*10)
	e.velocity += (target - e.velocity) * t
	e.Offset.X += e.velocity * dt.Seconds()

	if e.MaxX > e.MinX {
		e.Offset.X = math.Max(e.MinX, math.Min(e.MaxX, e.Offset.X))
	}
}
