// Package world holds the static cave map: obstacle definitions, lazily
// dilated wall layers, logical cave and path regions, and the live
// membership grids for entities and plants.
package world

import (
	"errors"
	"math"

	"github.com/Garsondee/Sub-Sense/internal/collision"
	"github.com/Garsondee/Sub-Sense/internal/geom"
)

const (
	// WallBucketSize is the grid resolution of every wall layer.
	WallBucketSize = 80.0
	// EntityBucketSize is the grid resolution for movable entities.
	EntityBucketSize = 120.0
	// PlantBucketSize is the grid resolution for plants.
	PlantBucketSize = 60.0
	// DilationStep quantises layer dilations so nearby radii share a layer.
	DilationStep = 1.0
	// PlaceTries bounds the random placement helpers.
	PlaceTries = 100
)

var (
	// ErrNoPosition is returned when no free spot inside a cave was found.
	ErrNoPosition = errors.New("can't find random position")
	// ErrNoPointInSight is returned when no reachable visible point was found.
	ErrNoPointInSight = errors.New("no point in sight found")
)

// Obstacle is a wall polygon at zero dilation.
type Obstacle struct {
	ID    int
	Shape geom.Polygon
}

// RegionKind separates caves from the paths joining them.
type RegionKind int

const (
	Cave RegionKind = iota
	Path
)

func (k RegionKind) String() string {
	if k == Path {
		return "path"
	}
	return "cave"
}

// Region is a logical, non-colliding area used for spawning and navigation.
// From and To name the caves a path joins; they are -1 for caves.
type Region struct {
	ID     int
	Kind   RegionKind
	Shape  geom.Polygon
	Center geom.Point
	From   int
	To     int
}

// Member is anything registered in an entity or plant grid.
type Member interface {
	ID() int
	Polygon() geom.Polygon
}

// layer is the obstacle set inflated by one quantised dilation.
type layer struct {
	dilation float64
	shapes   []geom.Polygon
	grid     *collision.Map[int]
}

// membership tracks where each member was last bucketed.
type membership struct {
	grid    *collision.Map[int]
	shapes  map[int]geom.Polygon
	members map[int]Member
}

func newMembership(bounds geom.Rect, bucket float64) *membership {
	return &membership{
		grid:    collision.NewMap[int](bounds, bucket),
		shapes:  make(map[int]geom.Polygon),
		members: make(map[int]Member),
	}
}

func (ms *membership) add(m Member) {
	id := m.ID()
	if old, ok := ms.shapes[id]; ok {
		ms.grid.Remove(old, id)
	}
	p := m.Polygon()
	ms.grid.Add(p, id)
	ms.shapes[id] = p
	ms.members[id] = m
}

func (ms *membership) remove(id int) bool {
	old, ok := ms.shapes[id]
	if !ok {
		return false
	}
	ms.grid.Remove(old, id)
	delete(ms.shapes, id)
	delete(ms.members, id)
	return true
}

func (ms *membership) update(m Member) {
	id := m.ID()
	old, ok := ms.shapes[id]
	if !ok {
		ms.add(m)
		return
	}
	p := m.Polygon()
	ms.grid.Move(old, p, id)
	ms.shapes[id] = p
}

func (ms *membership) around(r geom.Rect) []Member {
	ids := ms.grid.QueryRect(r)
	out := make([]Member, 0, len(ids))
	for _, id := range ids {
		out = append(out, ms.members[id])
	}
	return out
}

// Map is the world-static cave map plus live membership.
type Map struct {
	bounds    geom.Rect
	obstacles []Obstacle
	regions   []Region
	layers    map[int]*layer

	entities *membership
	plants   *membership
}

// New creates an empty map covering bounds.
func New(bounds geom.Rect) *Map {
	return &Map{
		bounds:   bounds,
		layers:   make(map[int]*layer),
		entities: newMembership(bounds, EntityBucketSize),
		plants:   newMembership(bounds, PlantBucketSize),
	}
}

func (m *Map) Bounds() geom.Rect        { return m.bounds }
func (m *Map) Obstacles() []Obstacle    { return m.obstacles }
func (m *Map) Regions() []Region        { return m.regions }
func (m *Map) Region(id int) Region     { return m.regions[id] }
func (m *Map) LayerCount() int          { return len(m.layers) }
func (m *Map) EntityCount() int         { return len(m.entities.members) }
func (m *Map) PlantCount() int          { return len(m.plants.members) }
func (m *Map) Obstacle(id int) Obstacle { return m.obstacles[id] }

// AddObstacle registers a wall polygon and drops every cached layer.
func (m *Map) AddObstacle(shape geom.Polygon) int {
	id := len(m.obstacles)
	m.obstacles = append(m.obstacles, Obstacle{ID: id, Shape: shape})
	clear(m.layers)
	return id
}

// AddRegion registers a cave or path and returns its id.
func (m *Map) AddRegion(r Region) int {
	r.ID = len(m.regions)
	if r.Kind == Cave {
		r.From, r.To = -1, -1
	}
	m.regions = append(m.regions, r)
	return r.ID
}

// Caves returns the cave regions in id order.
func (m *Map) Caves() []Region { return m.regionsOf(Cave) }

// Paths returns the path regions in id order.
func (m *Map) Paths() []Region { return m.regionsOf(Path) }

func (m *Map) regionsOf(k RegionKind) []Region {
	var out []Region
	for _, r := range m.regions {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// RegionAt returns the first region containing p.
func (m *Map) RegionAt(p geom.Point) (Region, bool) {
	for _, r := range m.regions {
		if r.Shape.Contains(p) {
			return r, true
		}
	}
	return Region{}, false
}

// dilationKey rounds d up to the layer it is served from.
func dilationKey(d float64) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d / DilationStep))
}

// layer returns the wall layer for dilation d, building it on first use.
func (m *Map) layer(d float64) *layer {
	key := dilationKey(d)
	if l, ok := m.layers[key]; ok {
		return l
	}
	dil := float64(key) * DilationStep
	l := &layer{
		dilation: dil,
		shapes:   make([]geom.Polygon, len(m.obstacles)),
		grid:     collision.NewMap[int](m.bounds, WallBucketSize),
	}
	for i, o := range m.obstacles {
		s := o.Shape
		if dil > 0 {
			s = s.Dilate(dil)
		}
		l.shapes[i] = s
		l.grid.Add(s, i)
	}
	m.layers[key] = l
	return l
}

// WallsAround returns the obstacles inflated by dilation whose buckets touch r.
func (m *Map) WallsAround(r geom.Rect, dilation float64) []geom.Polygon {
	l := m.layer(dilation)
	ids := l.grid.QueryRect(r)
	out := make([]geom.Polygon, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.shapes[id])
	}
	return out
}

// AddEntity registers a movable entity.
func (m *Map) AddEntity(e Member) { m.entities.add(e) }

// RemoveEntity drops a movable entity. Unknown ids are ignored.
func (m *Map) RemoveEntity(id int) bool { return m.entities.remove(id) }

// UpdateEntity re-buckets an entity after it moved.
func (m *Map) UpdateEntity(e Member) { m.entities.update(e) }

// Entity returns the registered entity with id.
func (m *Map) Entity(id int) (Member, bool) {
	e, ok := m.entities.members[id]
	return e, ok
}

// AddPlant registers a plant.
func (m *Map) AddPlant(p Member) { m.plants.add(p) }

// RemovePlant drops a plant.
func (m *Map) RemovePlant(id int) bool { return m.plants.remove(id) }

// GetEntitiesAround returns entities whose buckets touch the square of
// half-size r around p. Callers filter by exact distance.
func (m *Map) GetEntitiesAround(p geom.Point, r float64) []Member {
	return m.entities.around(geom.RectAround(p, r))
}

// GetPlantsAround returns plant candidates near p.
func (m *Map) GetPlantsAround(p geom.Point, r float64) []Member {
	return m.plants.around(geom.RectAround(p, r))
}
