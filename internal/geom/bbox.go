package geom

import "math"

// BoundingBox is the mutable oriented rectangle owned by a physics body.
// Its polygon is derived lazily and dropped whenever the box moves.
type BoundingBox struct {
	pos         Point
	orientation float64
	length      float64
	width       float64

	poly  Polygon
	valid bool
}

// NewBoundingBox returns a box centred on pos. length runs along orientation.
func NewBoundingBox(pos Point, orientation, length, width float64) *BoundingBox {
	return &BoundingBox{pos: pos, orientation: orientation, length: length, width: width}
}

func (b *BoundingBox) Position() Point      { return b.pos }
func (b *BoundingBox) Orientation() float64 { return b.orientation }
func (b *BoundingBox) Length() float64      { return b.length }
func (b *BoundingBox) Width() float64       { return b.width }

// Heading returns the unit vector along the box's length.
func (b *BoundingBox) Heading() Vector { return FromPolar(b.orientation, 1) }

// Radius returns half the box diagonal.
func (b *BoundingBox) Radius() float64 { return math.Hypot(b.length, b.width) / 2 }

// SetPosition moves the box and invalidates the cached polygon.
func (b *BoundingBox) SetPosition(p Point) {
	if p == b.pos {
		return
	}
	b.pos = p
	b.valid = false
}

// SetOrientation turns the box and invalidates the cached polygon.
func (b *BoundingBox) SetOrientation(o float64) {
	if o == b.orientation {
		return
	}
	b.orientation = o
	b.valid = false
}

// Set moves and turns the box in one call.
func (b *BoundingBox) Set(p Point, o float64) {
	b.SetPosition(p)
	b.SetOrientation(o)
}

// Polygon returns the box corners as a polygon.
func (b *BoundingBox) Polygon() Polygon {
	if !b.valid {
		b.poly = NewBox(b.pos, b.length, b.width, b.orientation)
		b.valid = true
	}
	return b.poly
}

// Points returns the four corners.
func (b *BoundingBox) Points() []Point { return b.Polygon().Points() }

// Edges returns the four sides.
func (b *BoundingBox) Edges() []Segment { return b.Polygon().Edges() }

// Bounds returns the axis-aligned bounds of the rotated box.
func (b *BoundingBox) Bounds() Rect { return b.Polygon().Bounds() }

// Overlaps tests the box against a polygon.
func (b *BoundingBox) Overlaps(p Polygon) bool { return b.Polygon().Overlaps(p) }

// Clone returns an independent copy sharing no cache.
func (b *BoundingBox) Clone() *BoundingBox {
	return &BoundingBox{pos: b.pos, orientation: b.orientation, length: b.length, width: b.width}
}
