package geom

import "math"

// miterLimit caps how far a dilated vertex may move, as a multiple of the dilation.
const miterLimit = 4.0

// Polygon is an immutable ring of vertices with cached bounds and edges.
// The generator only emits convex polygons; SAT assumes convexity.
type Polygon struct {
	points []Point
	edges  []Segment
	bounds Rect
}

// NewPolygon builds a polygon from its vertices, computing bounds and edges.
func NewPolygon(points ...Point) Polygon {
	pts := make([]Point, len(points))
	copy(pts, points)
	p := Polygon{points: pts}
	if len(pts) == 0 {
		return p
	}
	p.bounds = Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	p.edges = make([]Segment, len(pts))
	for i, pt := range pts {
		p.bounds.MinX = math.Min(p.bounds.MinX, pt.X)
		p.bounds.MinY = math.Min(p.bounds.MinY, pt.Y)
		p.bounds.MaxX = math.Max(p.bounds.MaxX, pt.X)
		p.bounds.MaxY = math.Max(p.bounds.MaxY, pt.Y)
		p.edges[i] = Segment{A: pt, B: pts[(i+1)%len(pts)]}
	}
	return p
}

// NewBox builds an oriented rectangle centred on c. length runs along angle.
func NewBox(c Point, length, width, angle float64) Polygon {
	hl, hw := length/2, width/2
	corners := [4]Vector{{-hl, -hw}, {hl, -hw}, {hl, hw}, {-hl, hw}}
	pts := make([]Point, 4)
	for i, v := range corners {
		pts[i] = c.Add(v.Rotate(angle))
	}
	return NewPolygon(pts...)
}

// Points returns the vertices. Callers must not modify the slice.
func (p Polygon) Points() []Point { return p.points }

// Edges returns the cached edges. Callers must not modify the slice.
func (p Polygon) Edges() []Segment { return p.edges }

// Bounds returns the cached axis-aligned bounding box.
func (p Polygon) Bounds() Rect { return p.bounds }

// Len returns the vertex count.
func (p Polygon) Len() int { return len(p.points) }

// IsEmpty reports whether the polygon has no vertices.
func (p Polygon) IsEmpty() bool { return len(p.points) == 0 }

// SignedArea is positive for counter-clockwise rings (y up).
func (p Polygon) SignedArea() float64 {
	a := 0.0
	for _, e := range p.edges {
		a += e.A.X*e.B.Y - e.B.X*e.A.Y
	}
	return a / 2
}

// Area returns the absolute area.
func (p Polygon) Area() float64 { return math.Abs(p.SignedArea()) }

// Centroid returns the area centroid, or the vertex average for degenerate rings.
func (p Polygon) Centroid() Point {
	if len(p.points) == 0 {
		return Point{}
	}
	a := p.SignedArea()
	if math.Abs(a) < Epsilon {
		var sx, sy float64
		for _, pt := range p.points {
			sx += pt.X
			sy += pt.Y
		}
		n := float64(len(p.points))
		return Point{X: sx / n, Y: sy / n}
	}
	var cx, cy float64
	for _, e := range p.edges {
		f := e.A.X*e.B.Y - e.B.X*e.A.Y
		cx += (e.A.X + e.B.X) * f
		cy += (e.A.Y + e.B.Y) * f
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}
}

// Radius returns the largest distance from the centroid to a vertex.
func (p Polygon) Radius() float64 {
	c := p.Centroid()
	r := 0.0
	for _, pt := range p.points {
		r = math.Max(r, c.DistanceTo(pt))
	}
	return r
}

// Rotate returns the polygon rotated about the origin.
func (p Polygon) Rotate(theta float64) Polygon {
	pts := make([]Point, len(p.points))
	for i, pt := range p.points {
		pts[i] = pt.Rotate(theta)
	}
	return NewPolygon(pts...)
}

// RotateAround returns the polygon rotated about c.
func (p Polygon) RotateAround(c Point, theta float64) Polygon {
	pts := make([]Point, len(p.points))
	for i, pt := range p.points {
		pts[i] = pt.RotateAround(c, theta)
	}
	return NewPolygon(pts...)
}

// Scale returns the polygon scaled about the origin.
func (p Polygon) Scale(f float64) Polygon {
	pts := make([]Point, len(p.points))
	for i, pt := range p.points {
		pts[i] = pt.Scale(f)
	}
	return NewPolygon(pts...)
}

// Translate returns the polygon moved by v.
func (p Polygon) Translate(v Vector) Polygon {
	pts := make([]Point, len(p.points))
	for i, pt := range p.points {
		pts[i] = pt.Add(v)
	}
	return NewPolygon(pts...)
}

// Dilate offsets every edge outward by d with mitred corners.
func (p Polygon) Dilate(d float64) Polygon {
	n := len(p.points)
	if d <= 0 || n < 3 {
		return p
	}
	ccw := p.SignedArea() > 0
	outward := func(e Segment) Vector {
		v := e.Vector().Normalize()
		if ccw {
			return Vector{X: v.Y, Y: -v.X}
		}
		return Vector{X: -v.Y, Y: v.X}
	}
	pts := make([]Point, n)
	for i := range p.points {
		n1 := outward(p.edges[(i+n-1)%n])
		n2 := outward(p.edges[i])
		denom := 1 + n1.Dot(n2)
		var off Vector
		if denom < Epsilon {
			off = n1.Scale(d)
		} else {
			off = n1.Add(n2).Scale(d / denom)
			if l := off.Length(); l > miterLimit*d {
				off = off.Scale(miterLimit * d / l)
			}
		}
		pts[i] = p.points[i].Add(off)
	}
	return NewPolygon(pts...)
}

// Contains reports whether pt lies inside the polygon (even-odd rule).
func (p Polygon) Contains(pt Point) bool {
	if len(p.points) < 3 || !p.bounds.Contains(pt) {
		return false
	}
	inside := false
	for _, e := range p.edges {
		a, b := e.A, e.B
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Overlaps reports whether p and q intersect. The bounding boxes are compared
// first; only candidates that pass run the separating-axis test.
func (p Polygon) Overlaps(q Polygon) bool {
	if len(p.points) == 0 || len(q.points) == 0 {
		return false
	}
	if !p.bounds.Overlaps(q.bounds) {
		return false
	}
	return !separatedAlong(p, q) && !separatedAlong(q, p)
}

// separatedAlong tests the edge normals of a as candidate separating axes.
func separatedAlong(a, b Polygon) bool {
	for _, e := range a.edges {
		axis := e.Vector().Perp()
		if axis.LengthSq() < Epsilon {
			continue
		}
		minA, maxA := project(a.points, axis)
		minB, maxB := project(b.points, axis)
		if maxA < minB || maxB < minA {
			return true
		}
	}
	return false
}

func project(pts []Point, axis Vector) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, pt := range pts {
		d := pt.Vector().Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// Raycast returns the hit nearest to ray.A and the edge it hit.
func (p Polygon) Raycast(ray Segment) (Point, Segment, bool) {
	if !p.bounds.Overlaps(ray.Bounds()) {
		return Point{}, Segment{}, false
	}
	best := math.Inf(1)
	var hit Point
	var edge Segment
	found := false
	for _, e := range p.edges {
		pt, ok := ray.Intersect(e)
		if !ok {
			continue
		}
		if d := ray.A.DistanceTo(pt); d < best {
			best, hit, edge, found = d, pt, e, true
		}
	}
	return hit, edge, found
}

// OutwardNormal returns the unit normal of e pointing away from the polygon.
func (p Polygon) OutwardNormal(e Segment) Vector {
	n := e.Normal()
	if p.SignedArea() > 0 {
		return n.Neg()
	}
	return n
}
