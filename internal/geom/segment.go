package geom

import "math"

// Segment is a line segment from A to B.
type Segment struct {
	A, B Point
}

// Seg is shorthand for Segment{a, b}.
func Seg(a, b Point) Segment { return Segment{A: a, B: b} }

// Vector returns B - A.
func (s Segment) Vector() Vector { return s.B.Sub(s.A) }

// Length returns the segment length.
func (s Segment) Length() float64 { return s.A.DistanceTo(s.B) }

// Heading returns the direction angle of A→B.
func (s Segment) Heading() float64 { return s.Vector().Angle() }

// Midpoint returns the centre of the segment.
func (s Segment) Midpoint() Point { return s.A.Lerp(s.B, 0.5) }

// Normal returns a unit normal (A→B rotated +90°).
func (s Segment) Normal() Vector { return s.Vector().Perp().Normalize() }

// Bounds returns the axis-aligned box around the segment.
func (s Segment) Bounds() Rect {
	return Rect{
		MinX: math.Min(s.A.X, s.B.X), MinY: math.Min(s.A.Y, s.B.Y),
		MaxX: math.Max(s.A.X, s.B.X), MaxY: math.Max(s.A.Y, s.B.Y),
	}
}

// Intersect returns the intersection point of s and o. Parallel segments,
// including collinear overlapping ones, never intersect.
func (s Segment) Intersect(o Segment) (Point, bool) {
	r := s.Vector()
	q := o.Vector()
	d := r.Cross(q)
	if d == 0 {
		return Point{}, false
	}
	ac := o.A.Sub(s.A)
	t := ac.Cross(q) / d
	u := ac.Cross(r) / d
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return s.A.Add(r.Scale(t)), true
}

// DistanceToPoint returns the shortest distance from p to the segment.
func (s Segment) DistanceToPoint(p Point) float64 {
	v := s.Vector()
	l2 := v.LengthSq()
	if l2 < Epsilon {
		return p.DistanceTo(s.A)
	}
	t := p.Sub(s.A).Dot(v) / l2
	t = math.Max(0, math.Min(1, t))
	return p.DistanceTo(s.A.Add(v.Scale(t)))
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectAround returns the square of half-size r centred on p.
func RectAround(p Point, r float64) Rect {
	return Rect{MinX: p.X - r, MinY: p.Y - r, MaxX: p.X + r, MaxY: p.Y + r}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the middle of the box.
func (r Rect) Center() Point { return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2} }

// Overlaps reports whether two boxes share any point (touching counts).
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Contains reports whether p lies inside or on the box.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// ContainsRect reports whether o lies fully inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

// Expand grows the box by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Union returns the smallest box containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX), MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX), MaxY: math.Max(r.MaxY, o.MaxY),
	}
}
