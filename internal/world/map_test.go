package world

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Garsondee/Sub-Sense/internal/geom"
)

func rect(minX, minY, maxX, maxY float64) geom.Polygon {
	return geom.NewPolygon(geom.Pt(minX, minY), geom.Pt(maxX, minY), geom.Pt(maxX, maxY), geom.Pt(minX, maxY))
}

// testMap is a 1000x1000 map with one big cave and a single wall block.
func testMap() *Map {
	m := New(geom.Rect{MaxX: 1000, MaxY: 1000})
	m.AddRegion(Region{Kind: Cave, Shape: rect(0, 0, 1000, 1000), Center: geom.Pt(500, 500)})
	m.AddObstacle(rect(100, 0, 200, 100))
	return m
}

type blob struct {
	id  int
	box *geom.BoundingBox
}

func (b *blob) ID() int               { return b.id }
func (b *blob) Polygon() geom.Polygon { return b.box.Polygon() }

func newBlob(id int, x, y float64) *blob {
	return &blob{id: id, box: geom.NewBoundingBox(geom.Pt(x, y), 0, 10, 4)}
}

func TestMap_DetectWallCollision_PicksOpposingEdge(t *testing.T) {
	m := testMap()
	bb := geom.NewBoundingBox(geom.Pt(95, 50), 0, 20, 10)
	c, ok := m.DetectWallCollision(bb, geom.Vec(1, 0))
	if !ok {
		t.Fatal("box poking into the wall should collide")
	}
	if c.ObstacleID != 0 {
		t.Fatalf("expected obstacle 0, got %d", c.ObstacleID)
	}
	if c.Normal.X > -0.99 {
		t.Fatalf("impacted edge should face the incoming box, normal %+v", c.Normal)
	}
	if c.Edge.A.X != 100 || c.Edge.B.X != 100 {
		t.Fatalf("expected the x=100 edge, got %+v", c.Edge)
	}
}

func TestMap_DetectWallCollision_ClearBox(t *testing.T) {
	m := testMap()
	bb := geom.NewBoundingBox(geom.Pt(50, 50), 0, 20, 10)
	if _, ok := m.DetectWallCollision(bb, geom.Vec(1, 0)); ok {
		t.Fatal("box away from walls should not collide")
	}
	if !m.BoxIsFree(bb) {
		t.Fatal("BoxIsFree should agree with DetectWallCollision")
	}
}

func TestMap_Raycast(t *testing.T) {
	m := testMap()
	hit, ok := m.Raycast(geom.Pt(0, 50), geom.Pt(300, 50))
	if !ok {
		t.Fatal("ray through the wall should hit")
	}
	if math.Abs(hit.Point.X-100) > 1e-9 || hit.ObstacleID != 0 {
		t.Fatalf("expected hit at x=100 on obstacle 0, got %+v", hit)
	}
	if hit.Normal.X > -0.99 {
		t.Fatalf("hit normal should face the ray origin, got %+v", hit.Normal)
	}
	if !m.LineOfSight(geom.Pt(0, 500), geom.Pt(900, 500)) {
		t.Fatal("open water should have line of sight")
	}
}

func TestMap_LayersAreCachedByDilation(t *testing.T) {
	m := testMap()
	if m.LayerCount() != 0 {
		t.Fatal("layers should be built lazily")
	}
	m.IsFree(geom.Pt(500, 500), 3.2)
	m.IsFree(geom.Pt(500, 500), 3.9)
	if m.LayerCount() != 1 {
		t.Fatalf("radii rounding to the same step should share a layer, got %d", m.LayerCount())
	}
	m.IsFree(geom.Pt(500, 500), 0)
	if m.LayerCount() != 2 {
		t.Fatalf("zero dilation should get its own layer, got %d", m.LayerCount())
	}
	m.AddObstacle(rect(500, 500, 510, 510))
	if m.LayerCount() != 0 {
		t.Fatal("adding an obstacle should drop cached layers")
	}
}

func TestMap_IsFreeUsesDilation(t *testing.T) {
	m := testMap()
	p := geom.Pt(97, 50)
	if m.IsFree(p, 5) {
		t.Fatal("point 3px from the wall is not free for radius 5")
	}
	if !m.IsFree(p, 1) {
		t.Fatal("point 3px from the wall is free for radius 1")
	}
	if m.IsFree(geom.Pt(2, 500), 5) {
		t.Fatal("point hugging the map edge is not free")
	}
}

func TestMap_RandomPosition(t *testing.T) {
	m := testMap()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		p, err := m.RandomPosition(rng, 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.IsFree(p, 8) {
			t.Fatalf("random position %+v is not free", p)
		}
	}
	empty := New(geom.Rect{MaxX: 100, MaxY: 100})
	if _, err := empty.RandomPosition(rng, 1); !errors.Is(err, ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition without caves, got %v", err)
	}
}

func TestMap_RandomPointInSight(t *testing.T) {
	m := testMap()
	rng := rand.New(rand.NewSource(2))
	from := geom.Pt(50, 200)
	for i := 0; i < 20; i++ {
		p, err := m.RandomPointInSight(rng, from, 300, 6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.LineOfSight(from, p) || from.DistanceTo(p) > 300+1e-9 {
			t.Fatalf("point %+v should be visible and within range", p)
		}
	}
	tiny := New(geom.Rect{MaxX: 10, MaxY: 10})
	if _, err := tiny.RandomPointInSight(rng, geom.Pt(5, 5), 100, 6); !errors.Is(err, ErrNoPointInSight) {
		t.Fatalf("expected ErrNoPointInSight, got %v", err)
	}
}

func TestMap_EntityMembership(t *testing.T) {
	m := testMap()
	a := newBlob(1, 300, 300)
	b := newBlob(2, 900, 900)
	m.AddEntity(a)
	m.AddEntity(b)
	near := m.GetEntitiesAround(geom.Pt(300, 300), 20)
	if len(near) != 1 || near[0].ID() != 1 {
		t.Fatalf("expected only entity 1 near (300,300), got %d", len(near))
	}
	a.box.SetPosition(geom.Pt(880, 880))
	m.UpdateEntity(a)
	if got := m.GetEntitiesAround(geom.Pt(300, 300), 20); len(got) != 0 {
		t.Fatalf("moved entity should leave its old buckets, got %d", len(got))
	}
	if got := m.GetEntitiesAround(geom.Pt(890, 890), 30); len(got) != 2 {
		t.Fatalf("expected both entities near (890,890), got %d", len(got))
	}
	if !m.RemoveEntity(2) || m.RemoveEntity(2) {
		t.Fatal("RemoveEntity should succeed once")
	}
	if m.EntityCount() != 1 {
		t.Fatalf("expected 1 entity left, got %d", m.EntityCount())
	}
}

func TestMap_PlantsAreSeparate(t *testing.T) {
	m := testMap()
	m.AddPlant(newBlob(5, 400, 400))
	if len(m.GetEntitiesAround(geom.Pt(400, 400), 10)) != 0 {
		t.Fatal("plants should not show up as entities")
	}
	if len(m.GetPlantsAround(geom.Pt(400, 400), 10)) != 1 {
		t.Fatal("plant should be found in the plant grid")
	}
}
