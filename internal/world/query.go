package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Garsondee/Sub-Sense/internal/collision"
	"github.com/Garsondee/Sub-Sense/internal/geom"
)

// RayHit is the nearest wall a ray ran into.
type RayHit struct {
	Point      geom.Point
	Normal     geom.Vector
	ObstacleID int
	Distance   float64
}

// Raycast returns the wall hit nearest to from along from→to.
func (m *Map) Raycast(from, to geom.Point) (RayHit, bool) {
	ray := geom.Seg(from, to)
	l := m.layer(0)
	best := RayHit{Distance: math.Inf(1)}
	found := false
	for _, id := range l.grid.QueryRect(ray.Bounds()) {
		shape := l.shapes[id]
		pt, edge, ok := shape.Raycast(ray)
		if !ok {
			continue
		}
		d := from.DistanceTo(pt)
		if d < best.Distance {
			best = RayHit{Point: pt, Normal: shape.OutwardNormal(edge), ObstacleID: id, Distance: d}
			found = true
		}
	}
	return best, found
}

// LineOfSight reports whether no wall blocks from→to.
func (m *Map) LineOfSight(from, to geom.Point) bool {
	_, hit := m.Raycast(from, to)
	return !hit
}

// DetectWallCollision tests bb against the walls. On overlap it returns the
// impacted edge that most opposes velocityHint; ties go to the edge nearest
// the box centre.
func (m *Map) DetectWallCollision(bb *geom.BoundingBox, velocityHint geom.Vector) (collision.Contact, bool) {
	l := m.layer(0)
	box := bb.Polygon()
	centre := bb.Position()
	dir := velocityHint.Normalize()

	var best collision.Contact
	bestScore, bestDist := math.Inf(1), math.Inf(1)
	found := false
	for _, id := range l.grid.QueryRect(box.Bounds()) {
		shape := l.shapes[id]
		if !box.Overlaps(shape) {
			continue
		}
		edges := touchingEdges(box, shape)
		if len(edges) == 0 {
			edges = shape.Edges()
		}
		for _, e := range edges {
			n := shape.OutwardNormal(e)
			score := n.Dot(dir)
			dist := e.DistanceToPoint(centre)
			if score < bestScore-geom.Epsilon || (math.Abs(score-bestScore) <= geom.Epsilon && dist < bestDist) {
				best = collision.Contact{ObstacleID: m.obstacles[id].ID, Edge: e, Normal: n}
				bestScore, bestDist = score, dist
				found = true
			}
		}
	}
	return best, found
}

// touchingEdges returns the edges of shape that cross box or end inside it.
func touchingEdges(box, shape geom.Polygon) []geom.Segment {
	var out []geom.Segment
	for _, e := range shape.Edges() {
		if box.Contains(e.A) || box.Contains(e.B) {
			out = append(out, e)
			continue
		}
		for _, be := range box.Edges() {
			if _, ok := e.Intersect(be); ok {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// IsFree reports whether a disc of radius around p stays clear of walls and
// inside the map.
func (m *Map) IsFree(p geom.Point, radius float64) bool {
	if !m.bounds.Expand(-radius).Contains(p) {
		return false
	}
	l := m.layer(radius)
	for _, id := range l.grid.QueryPoint(p) {
		if l.shapes[id].Contains(p) {
			return false
		}
	}
	return true
}

// BoxIsFree reports whether bb overlaps no wall.
func (m *Map) BoxIsFree(bb *geom.BoundingBox) bool {
	box := bb.Polygon()
	l := m.layer(0)
	for _, id := range l.grid.QueryRect(box.Bounds()) {
		if box.Overlaps(l.shapes[id]) {
			return false
		}
	}
	return true
}

// RandomPosition returns a free point inside a random cave.
func (m *Map) RandomPosition(rng *rand.Rand, radius float64) (geom.Point, error) {
	caves := m.Caves()
	if len(caves) == 0 {
		return geom.Point{}, fmt.Errorf("%w for radius %.1f: map has no caves", ErrNoPosition, radius)
	}
	for i := 0; i < PlaceTries; i++ {
		c := caves[rng.Intn(len(caves))]
		if p, ok := m.tryIn(rng, c, radius); ok {
			return p, nil
		}
	}
	return geom.Point{}, fmt.Errorf("%w for radius %.1f after %d tries", ErrNoPosition, radius, PlaceTries)
}

// RandomPositionIn returns a free point inside region r.
func (m *Map) RandomPositionIn(rng *rand.Rand, r Region, radius float64) (geom.Point, error) {
	for i := 0; i < PlaceTries; i++ {
		if p, ok := m.tryIn(rng, r, radius); ok {
			return p, nil
		}
	}
	return geom.Point{}, fmt.Errorf("%w in %s %d for radius %.1f", ErrNoPosition, r.Kind, r.ID, radius)
}

func (m *Map) tryIn(rng *rand.Rand, r Region, radius float64) (geom.Point, bool) {
	b := r.Shape.Bounds()
	p := geom.Pt(b.MinX+rng.Float64()*b.Width(), b.MinY+rng.Float64()*b.Height())
	if !r.Shape.Contains(p) || !m.IsFree(p, radius) {
		return geom.Point{}, false
	}
	return p, true
}

// RandomPointInSight returns a free point within maxDist of from that is
// visible from it.
func (m *Map) RandomPointInSight(rng *rand.Rand, from geom.Point, maxDist, radius float64) (geom.Point, error) {
	minDist := math.Min(radius, maxDist/2)
	for i := 0; i < PlaceTries; i++ {
		a := rng.Float64() * 2 * math.Pi
		d := minDist + rng.Float64()*(maxDist-minDist)
		p := from.Add(geom.FromPolar(a, d))
		if !m.IsFree(p, radius) || !m.LineOfSight(from, p) {
			continue
		}
		return p, nil
	}
	return geom.Point{}, fmt.Errorf("%w from (%.0f,%.0f) within %.0f after %d tries",
		ErrNoPointInSight, from.X, from.Y, maxDist, PlaceTries)
}
