package room

import (
	"math"
)

// epsilon used when comparing floats that came back from disk
const epsilon = 1e-6

// Vec3 is a position / scale triple. Z is only ever used as a draw-order
// tie breaker, placement is 2D.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// One is the identity scale
var One = Vec3{X: 1, Y: 1, Z: 1}

// Add returns v + o
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Mul multiplies component-wise
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{X: v.X * o.X, Y: v.Y * o.Y, Z: v.Z * o.Z}
}

// Div divides component-wise. A zero component in `o` leaves the value as-is
// rather than producing Inf/NaN.
func (v Vec3) Div(o Vec3) Vec3 {
	div := func(a, b float64) float64 {
		if b == 0 {
			return a
		}
		return a / b
	}
	return Vec3{X: div(v.X, o.X), Y: div(v.Y, o.Y), Z: div(v.Z, o.Z)}
}

// Equal reports whether two vectors are the same within epsilon
func (v Vec3) Equal(o Vec3) bool {
	return math.Abs(v.X-o.X) < epsilon && math.Abs(v.Y-o.Y) < epsilon && math.Abs(v.Z-o.Z) < epsilon
}

// Rect is an axis aligned rectangle with Y pointing up.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectAt builds a rect of size (w,h) centred on (x,y).
func RectAt(x, y, w, h float64) Rect {
	return Rect{MinX: x - w/2, MinY: y - h/2, MaxX: x + w/2, MaxY: y + h/2}
}

func (r Rect) Width() float64 { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Empty returns true if the rect has no area
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Center of the rect
func (r Rect) Center() Vec3 {
	return Vec3{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Overlaps returns if the rects share some area. Touching edges do not
// count as overlapping.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Contains returns if point p is within the rect (inclusive)
func (r Rect) Contains(p Vec3) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Translate moves the rect by d
func (r Rect) Translate(d Vec3) Rect {
	return Rect{MinX: r.MinX + d.X, MinY: r.MinY + d.Y, MaxX: r.MaxX + d.X, MaxY: r.MaxY + d.Y}
}

// Expand grows the rect by m on every side
func (r Rect) Expand(m float64) Rect {
	return Rect{MinX: r.MinX - m, MinY: r.MinY - m, MaxX: r.MaxX + m, MaxY: r.MaxY + m}
}

// Union returns the smallest rect holding both. Empty rects are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// ClampInside returns the translation needed to move `inner` so it sits
// within r. If inner is larger than r on an axis it is centred on that axis.
func (r Rect) ClampInside(inner Rect) Vec3 {
	shift := func(imin, imax, omin, omax float64) float64 {
		if imax-imin > omax-omin {
			return (omin+omax)/2 - (imin+imax)/2
		}
		if imin < omin {
			return omin - imin
		}
		if imax > omax {
			return omax - imax
		}
		return 0
	}
	return Vec3{
		X: shift(inner.MinX, inner.MaxX, r.MinX, r.MaxX),
		Y: shift(inner.MinY, inner.MaxY, r.MinY, r.MaxY),
	}
}
