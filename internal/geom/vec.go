// Package geom is the pure-math kernel: points, vectors, segments, boxes and
// convex polygons with separating-axis overlap tests.
package geom

import "math"

// Epsilon is the tolerance used for degenerate lengths and comparisons.
const Epsilon = 1e-9

// Point is a location in world space.
type Point struct {
	X, Y float64
}

// Vector is a displacement, velocity or force.
type Vector struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Vec is shorthand for Vector{x, y}.
func Vec(x, y float64) Vector { return Vector{X: x, Y: y} }

// FromPolar builds a vector of the given length pointing along angle (radians).
func FromPolar(angle, length float64) Vector {
	return Vector{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

// Add translates p by v.
func (p Point) Add(v Vector) Point { return Point{X: p.X + v.X, Y: p.Y + v.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector { return Vector{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both coordinates by f (scaling about the origin).
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// Rotate rotates p about the origin by theta radians.
func (p Point) Rotate(theta float64) Point {
	s, c := math.Sincos(theta)
	return Point{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// RotateAround rotates p about center by theta radians.
func (p Point) RotateAround(center Point, theta float64) Point {
	return center.Add(p.Sub(center).Rotate(theta))
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp interpolates from p to q by t.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Vector returns p as a displacement from the origin.
func (p Point) Vector() Vector { return Vector(p) }

// Add returns v + w.
func (v Vector) Add(w Vector) Vector { return Vector{X: v.X + w.X, Y: v.Y + w.Y} }

// Sub returns v - w.
func (v Vector) Sub(w Vector) Vector { return Vector{X: v.X - w.X, Y: v.Y - w.Y} }

// Scale returns v * f.
func (v Vector) Scale(f float64) Vector { return Vector{X: v.X * f, Y: v.Y * f} }

// Neg returns -v.
func (v Vector) Neg() Vector { return Vector{X: -v.X, Y: -v.Y} }

// Rotate rotates v by theta radians.
func (v Vector) Rotate(theta float64) Vector {
	s, c := math.Sincos(theta)
	return Vector{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// Dot returns the dot product.
func (v Vector) Dot(w Vector) float64 { return v.X*w.X + v.Y*w.Y }

// Cross returns the z component of the 3D cross product.
func (v Vector) Cross(w Vector) float64 { return v.X*w.Y - v.Y*w.X }

// Length returns |v|.
func (v Vector) Length() float64 { return math.Hypot(v.X, v.Y) }

// LengthSq returns |v|².
func (v Vector) LengthSq() float64 { return v.X*v.X + v.Y*v.Y }

// Normalize returns the unit vector along v, or the zero vector.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l < Epsilon {
		return Vector{}
	}
	return Vector{X: v.X / l, Y: v.Y / l}
}

// Perp returns v rotated by +90°.
func (v Vector) Perp() Vector { return Vector{X: -v.Y, Y: v.X} }

// Angle returns the heading of v in radians.
func (v Vector) Angle() float64 { return math.Atan2(v.Y, v.X) }

// IsZero reports whether both components are exactly zero.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }

// WrapAngle maps a to [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// NormalizeAngle maps a to [-π, π].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
