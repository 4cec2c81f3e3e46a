// Package geom provides the small 2D vector type shared by the graph store,
// the layout simulation and the presentation adapters.
package geom

import "math"

// Vec is a 2D point or displacement in layout space.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// IsFinite reports whether both components are finite numbers.
func (v Vec) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ClampLen returns v shortened to at most max. A non-positive max disables clamping.
func (v Vec) ClampLen(max float64) Vec {
	if max <= 0 {
		return v
	}
	if l := v.Len(); l > max {
		return v.Scale(max / l)
	}
	return v
}

// Centroid returns the mean of pts, or the zero vector when pts is empty.
func Centroid(pts []Vec) Vec {
	if len(pts) == 0 {
		return Vec{}
	}
	var sum Vec
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}

// Bounds returns the axis-aligned bounding box of pts as (min, max).
// Both are the zero vector when pts is empty.
func Bounds(pts []Vec) (Vec, Vec) {
	if len(pts) == 0 {
		return Vec{}, Vec{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}
