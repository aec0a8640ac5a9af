// Package collision holds the uniform bucket grid used for broad-phase
// queries and the wall contact record shared by the map and physics.
package collision

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/geom"
)

// MarginBuckets is the number of extra buckets on every side of the declared
// bounds, so queries slightly outside the world never reallocate.
const MarginBuckets = 4

// Map is a uniform grid of buckets over a fixed world rectangle. Items are
// stored in every bucket their bounding box touches. Queries are a superset:
// callers re-check exact overlap on the candidates.
type Map[T comparable] struct {
	bounds     geom.Rect
	bucketSize float64
	cols       int
	rows       int
	buckets    [][]T
}

// NewMap creates an empty grid covering bounds with square buckets.
func NewMap[T comparable](bounds geom.Rect, bucketSize float64) *Map[T] {
	if bucketSize <= 0 {
		bucketSize = 1
	}
	cols := int(math.Ceil(bounds.Width()/bucketSize)) + 2*MarginBuckets
	rows := int(math.Ceil(bounds.Height()/bucketSize)) + 2*MarginBuckets
	cols = max(cols, 1)
	rows = max(rows, 1)
	return &Map[T]{
		bounds:     bounds,
		bucketSize: bucketSize,
		cols:       cols,
		rows:       rows,
		buckets:    make([][]T, cols*rows),
	}
}

// BucketSize returns the grid resolution.
func (m *Map[T]) BucketSize() float64 { return m.bucketSize }

// Dims returns the number of bucket columns and rows, margin included.
func (m *Map[T]) Dims() (int, int) { return m.cols, m.rows }

// cell maps a world coordinate to a clamped bucket coordinate.
func (m *Map[T]) cell(x, y float64) (int, int) {
	cx := int(math.Floor((x-m.bounds.MinX)/m.bucketSize)) + MarginBuckets
	cy := int(math.Floor((y-m.bounds.MinY)/m.bucketSize)) + MarginBuckets
	cx = max(0, min(cx, m.cols-1))
	cy = max(0, min(cy, m.rows-1))
	return cx, cy
}

func (m *Map[T]) span(r geom.Rect) (int, int, int, int) {
	x0, y0 := m.cell(r.MinX, r.MinY)
	x1, y1 := m.cell(r.MaxX, r.MaxY)
	return x0, y0, x1, y1
}

// Add inserts item into every bucket overlapping the polygon's bounds.
func (m *Map[T]) Add(p geom.Polygon, item T) { m.AddRect(p.Bounds(), item) }

// Remove deletes item from every bucket overlapping the polygon's bounds.
func (m *Map[T]) Remove(p geom.Polygon, item T) { m.RemoveRect(p.Bounds(), item) }

// AddRect inserts item into every bucket overlapping r.
func (m *Map[T]) AddRect(r geom.Rect, item T) {
	x0, y0, x1, y1 := m.span(r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			idx := cy*m.cols + cx
			if !contains(m.buckets[idx], item) {
				m.buckets[idx] = append(m.buckets[idx], item)
			}
		}
	}
}

// RemoveRect deletes item from every bucket overlapping r.
func (m *Map[T]) RemoveRect(r geom.Rect, item T) {
	x0, y0, x1, y1 := m.span(r)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			idx := cy*m.cols + cx
			b := m.buckets[idx]
			for i, it := range b {
				if it == item {
					// Keep order stable so query results stay deterministic.
					m.buckets[idx] = append(b[:i], b[i+1:]...)
					break
				}
			}
		}
	}
}

// Move re-buckets item from its old shape to its new one.
func (m *Map[T]) Move(old, cur geom.Polygon, item T) {
	if old.Bounds() == cur.Bounds() {
		return
	}
	m.Remove(old, item)
	m.Add(cur, item)
}

// Query returns the deduplicated items of every bucket the polygon touches.
func (m *Map[T]) Query(p geom.Polygon) []T { return m.QueryRect(p.Bounds()) }

// QueryPoint returns the items of the bucket containing pt.
func (m *Map[T]) QueryPoint(pt geom.Point) []T {
	return m.QueryRect(geom.Rect{MinX: pt.X, MinY: pt.Y, MaxX: pt.X, MaxY: pt.Y})
}

// QueryRect returns the deduplicated items of every bucket r touches, in
// bucket-scan then insertion order.
func (m *Map[T]) QueryRect(r geom.Rect) []T {
	x0, y0, x1, y1 := m.span(r)
	var out []T
	if x0 == x1 && y0 == y1 {
		b := m.buckets[y0*m.cols+x0]
		if len(b) == 0 {
			return nil
		}
		return append(out, b...)
	}
	seen := make(map[T]struct{})
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			for _, it := range m.buckets[cy*m.cols+cx] {
				if _, dup := seen[it]; dup {
					continue
				}
				seen[it] = struct{}{}
				out = append(out, it)
			}
		}
	}
	return out
}

// Len returns the number of distinct items stored.
func (m *Map[T]) Len() int {
	seen := make(map[T]struct{})
	for _, b := range m.buckets {
		for _, it := range b {
			seen[it] = struct{}{}
		}
	}
	return len(seen)
}

func contains[T comparable](s []T, item T) bool {
	for _, it := range s {
		if it == item {
			return true
		}
	}
	return false
}
