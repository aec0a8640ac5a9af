package mapgen

import (
	"math"
	"math/rand"
	"sort"

	"github.com/Garsondee/Sub-Sense/internal/collision"
	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/world"
)

// maskBucketSize is the grid resolution of the cave/path mask.
const maskBucketSize = 150.0

// Result summarises what a generation run produced.
type Result struct {
	Caves   int
	Paths   int
	Rocks   int
	Borders int
	Skipped int   // caves dropped after PlaceAttempts failed placements
	PerTier []int // placed caves per tier, in Config.Tiers order
}

type cave struct {
	shape  geom.Polygon
	center geom.Point
}

type link struct{ from, to int }

// Generate builds a map. The same rng state and config always yield the same
// map. Caves that cannot be placed are skipped and counted, not errors.
func Generate(rng *rand.Rand, cfg Config) (*world.Map, Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Result{}, err
	}
	bounds := geom.Rect{MaxX: cfg.Width, MaxY: cfg.Height}
	m := world.New(bounds)
	res := Result{PerTier: make([]int, len(cfg.Tiers))}

	caves := placeCaves(rng, cfg, bounds, &res)
	links := connect(rng, cfg, bounds, caves)

	mask := collision.NewMap[int](bounds, maskBucketSize)
	var maskShapes []geom.Polygon

	for _, c := range caves {
		m.AddRegion(world.Region{Kind: world.Cave, Shape: c.shape, Center: c.center})
		mask.Add(c.shape, len(maskShapes))
		maskShapes = append(maskShapes, c.shape)
	}
	for _, l := range links {
		shape := pathShape(rng, cfg, caves[l.from].center, caves[l.to].center)
		m.AddRegion(world.Region{
			Kind:   world.Path,
			Shape:  shape,
			Center: shape.Centroid(),
			From:   l.from,
			To:     l.to,
		})
		mask.Add(shape, len(maskShapes))
		maskShapes = append(maskShapes, shape)
	}
	res.Caves = len(caves)
	res.Paths = len(links)

	for _, rock := range rocks(rng, cfg) {
		blocked := false
		for _, id := range mask.Query(rock) {
			if rock.Overlaps(maskShapes[id]) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		m.AddObstacle(rock)
		res.Rocks++
	}
	for _, slab := range borders(bounds, cfg.BorderThickness) {
		m.AddObstacle(slab)
		res.Borders++
	}
	return m, res, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// placeCaves samples caves tier by tier, rejecting candidates that come
// within the tier's MinDistance of an earlier cave.
func placeCaves(rng *rand.Rand, cfg Config, bounds geom.Rect, res *Result) []cave {
	var caves []cave
	for ti, tier := range cfg.Tiers {
		for n := 0; n < tier.Count; n++ {
			placed := false
			for attempt := 0; attempt < cfg.PlaceAttempts; attempt++ {
				size := uniform(rng, tier.MinSize, tier.MaxSize)
				inner := bounds.Expand(-(cfg.WallMargin + size))
				var c geom.Point
				if inner.Width() <= 0 || inner.Height() <= 0 {
					c = bounds.Center()
				} else {
					c = geom.Pt(uniform(rng, inner.MinX, inner.MaxX), uniform(rng, inner.MinY, inner.MaxY))
				}
				shape := caveShape(rng, c, size, tier.Corners)
				grown := shape.Dilate(tier.MinDistance)
				free := true
				for _, other := range caves {
					if grown.Overlaps(other.shape) {
						free = false
						break
					}
				}
				if !free {
					continue
				}
				caves = append(caves, cave{shape: shape, center: shape.Centroid()})
				res.PerTier[ti]++
				placed = true
				break
			}
			if !placed {
				res.Skipped++
			}
		}
	}
	return caves
}

// caveShape samples corners at sorted random angles on an ellipse and turns
// the ring by a random global angle, which keeps it convex.
func caveShape(rng *rand.Rand, c geom.Point, size float64, corners int) geom.Polygon {
	rx := size
	ry := size * uniform(rng, 0.6, 1.0)
	angles := make([]float64, corners)
	for i := range angles {
		angles[i] = rng.Float64() * 2 * math.Pi
	}
	sort.Float64s(angles)
	rot := rng.Float64() * 2 * math.Pi
	pts := make([]geom.Point, corners)
	for i, a := range angles {
		v := geom.Vec(rx*math.Cos(a), ry*math.Sin(a)).Rotate(rot)
		pts[i] = c.Add(v)
	}
	return geom.NewPolygon(pts...)
}

// connect grows a spanning structure from each of the four corners: start at
// the cave nearest the corner, then repeatedly link the closest unconnected
// cave, with random jitter added to every candidate distance. Links already
// made from another corner are kept once.
func connect(rng *rand.Rand, cfg Config, bounds geom.Rect, caves []cave) []link {
	if len(caves) < 2 {
		return nil
	}
	corners := []geom.Point{
		geom.Pt(bounds.MinX, bounds.MinY),
		geom.Pt(bounds.MaxX, bounds.MinY),
		geom.Pt(bounds.MinX, bounds.MaxY),
		geom.Pt(bounds.MaxX, bounds.MaxY),
	}
	seen := make(map[link]bool)
	var links []link
	for _, corner := range corners {
		start := 0
		for i, c := range caves {
			if corner.DistanceTo(c.center) < corner.DistanceTo(caves[start].center) {
				start = i
			}
		}
		in := make([]bool, len(caves))
		in[start] = true
		for joined := 1; joined < len(caves); joined++ {
			bestFrom, bestTo := -1, -1
			best := math.Inf(1)
			for a := range caves {
				if !in[a] {
					continue
				}
				for b := range caves {
					if in[b] {
						continue
					}
					d := caves[a].center.DistanceTo(caves[b].center) + rng.Float64()*cfg.PathJitter
					if d < best {
						best, bestFrom, bestTo = d, a, b
					}
				}
			}
			in[bestTo] = true
			key := link{from: min(bestFrom, bestTo), to: max(bestFrom, bestTo)}
			if seen[key] {
				continue
			}
			seen[key] = true
			links = append(links, key)
		}
	}
	return links
}

// pathShape is a box spanning two cave centres.
func pathShape(rng *rand.Rand, cfg Config, a, b geom.Point) geom.Polygon {
	dist := a.DistanceTo(b)
	width := math.Min(uniform(rng, cfg.PathMinWidth, cfg.PathMaxWidth), dist)
	return geom.NewBox(a.Lerp(b, 0.5), dist, width, b.Sub(a).Angle())
}

// rocks fills the map with a jittered grid of small convex polygons.
func rocks(rng *rand.Rand, cfg Config) []geom.Polygon {
	s := cfg.RockSpacing
	var out []geom.Polygon
	for y := s / 2; y < cfg.Height; y += s {
		for x := s / 2; x < cfg.Width; x += s {
			c := geom.Pt(x+uniform(rng, -s/4, s/4), y+uniform(rng, -s/4, s/4))
			r := uniform(rng, cfg.RockMinRadius, cfg.RockMaxRadius)
			out = append(out, caveShape(rng, c, r, cfg.RockCorners))
		}
	}
	return out
}

// borders returns four slabs just outside the map edges.
func borders(b geom.Rect, t float64) []geom.Polygon {
	if t <= 0 {
		return nil
	}
	slab := func(minX, minY, maxX, maxY float64) geom.Polygon {
		return geom.NewPolygon(geom.Pt(minX, minY), geom.Pt(maxX, minY), geom.Pt(maxX, maxY), geom.Pt(minX, maxY))
	}
	return []geom.Polygon{
		slab(b.MinX-t, b.MinY-t, b.MaxX+t, b.MinY),
		slab(b.MinX-t, b.MaxY, b.MaxX+t, b.MaxY+t),
		slab(b.MinX-t, b.MinY, b.MinX, b.MaxY),
		slab(b.MaxX, b.MinY, b.MaxX+t, b.MaxY),
	}
}
