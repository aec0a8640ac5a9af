package physics

import (
	"math"
	"testing"

	"github.com/Garsondee/Sub-Sense/internal/collision"
	"github.com/Garsondee/Sub-Sense/internal/geom"
)

var (
	testVolume   = Volume{Length: 10, Beam: 2, Mass: 100, Drag: 0.5}
	frictionless = Volume{Length: 10, Beam: 2, Mass: 100}
)

// floorWall reports a horizontal wall whenever the box dips below y.
type floorWall struct {
	y     float64
	calls int
}

func (f *floorWall) DetectWallCollision(bb *geom.BoundingBox, _ geom.Vector) (collision.Contact, bool) {
	f.calls++
	if bb.Bounds().MaxY <= f.y {
		return collision.Contact{}, false
	}
	return collision.Contact{
		ObstacleID: 9,
		Edge:       geom.Seg(geom.Pt(-1000, f.y), geom.Pt(1000, f.y)),
		Normal:     geom.Vec(0, -1),
	}, true
}

// alwaysWall collides every projection with a horizontal edge.
type alwaysWall struct{ calls int }

func (a *alwaysWall) DetectWallCollision(*geom.BoundingBox, geom.Vector) (collision.Contact, bool) {
	a.calls++
	return collision.Contact{ObstacleID: 1, Edge: geom.Seg(geom.Pt(0, 0), geom.Pt(1, 0)), Normal: geom.Vec(0, 1)}, true
}

func TestBody_IdleFastPath(t *testing.T) {
	b := NewBody(geom.Pt(50, 60), 1.2, testVolume)
	walls := &floorWall{y: 0}
	hits := b.Step(33, walls)
	if hits != nil {
		t.Fatalf("idle body should report no collisions, got %v", hits)
	}
	if walls.calls != 0 {
		t.Fatalf("idle body should not query walls, got %d calls", walls.calls)
	}
	if b.Position() != geom.Pt(50, 60) || b.Orientation() != 1.2 || !b.Velocity().IsZero() {
		t.Fatalf("idle body moved: pos=%+v o=%.3f v=%+v", b.Position(), b.Orientation(), b.Velocity())
	}
}

func TestBody_ApproachesTerminalVelocity(t *testing.T) {
	const force = 50.0
	b := NewBody(geom.Pt(0, 0), 0, testVolume)
	vt := testVolume.TerminalSpeed(force)
	if math.Abs(vt-10) > 1e-9 {
		t.Fatalf("test setup: expected terminal speed 10, got %.6f", vt)
	}
	prev := 0.0
	for i := 0; i < 3000; i++ {
		b.ApplyThrust(force)
		b.Step(33, nil)
		s := b.Speed()
		if s > vt+1e-9 {
			t.Fatalf("tick %d: speed %.6f exceeded terminal %.6f", i, s, vt)
		}
		if s < prev-1e-9 {
			t.Fatalf("tick %d: speed decreased under constant thrust (%.6f -> %.6f)", i, prev, s)
		}
		prev = s
	}
	if prev < 0.99*vt {
		t.Fatalf("speed %.4f should approach terminal %.4f", prev, vt)
	}
	if b.Position().X <= 0 || math.Abs(b.Position().Y) > 1e-6 {
		t.Fatalf("body should travel along +x, got %+v", b.Position())
	}
}

func TestBody_SpeedHushStopsCreep(t *testing.T) {
	b := NewBody(geom.Pt(0, 0), 0, testVolume)
	b.SetVelocity(geom.Vec(SpeedEpsilon/2, 0))
	b.Step(16, nil)
	if !b.Velocity().IsZero() {
		t.Fatalf("slow unforced body should snap to rest, got %+v", b.Velocity())
	}
	if !b.Idle() {
		t.Fatal("body at rest with no pending force should be idle")
	}
}

func TestBody_DragNeverReverses(t *testing.T) {
	b := NewBody(geom.Pt(0, 0), math.Pi/2, Volume{Length: 50, Beam: 50, Mass: 1, Drag: 5})
	b.SetVelocity(geom.Vec(100, 0))
	b.Step(1000, nil)
	if b.Velocity().X < 0 {
		t.Fatalf("drag should not push the body backwards, got %+v", b.Velocity())
	}
}

func TestBody_ForcesResetAfterStep(t *testing.T) {
	b := NewBody(geom.Pt(0, 0), 0, testVolume)
	b.ApplyThrust(20)
	b.ApplyTorque(5)
	b.Step(33, nil)
	if !b.PendingForce().IsZero() || b.PendingTorque() != 0 {
		t.Fatal("accumulators should reset after a step")
	}
	tel := b.LastTelemetry()
	if math.Abs(tel.Force.X-20) > 1e-9 || tel.Torque != 5 {
		t.Fatalf("telemetry should record the applied force, got %+v", tel)
	}
	if b.AngularVelocity() <= 0 {
		t.Fatal("positive torque should spin the body up")
	}
}

func TestBody_OrientationWraps(t *testing.T) {
	b := NewBody(geom.Pt(0, 0), 2*math.Pi-0.001, testVolume)
	b.SetAngularVelocity(1)
	b.Step(100, nil)
	o := b.Orientation()
	if o < 0 || o >= 2*math.Pi {
		t.Fatalf("orientation should stay in [0, 2π), got %.6f", o)
	}
}

func TestBody_WallCollisionSlides(t *testing.T) {
	b := NewBody(geom.Pt(0, 90), 0, frictionless)
	b.SetVelocity(geom.Vec(100, 100))
	walls := &floorWall{y: 100}
	hits := b.Step(100, walls)
	if len(hits) == 0 {
		t.Fatal("diagonal move into the floor should collide")
	}
	h := hits[0]
	if h.ObstacleID != 9 {
		t.Fatalf("collision should name the obstacle, got %d", h.ObstacleID)
	}
	if math.Abs(h.ImpactAngle-math.Pi/4) > 1e-9 {
		t.Fatalf("45° approach should report a 45° impact, got %.4f", h.ImpactAngle)
	}
	v := b.Velocity()
	if math.Abs(v.Y) > 1e-9 {
		t.Fatalf("normal component should be removed, got %+v", v)
	}
	if math.Abs(v.X-100*Restitution) > 1e-6 {
		t.Fatalf("tangent component should keep %.2f of its speed, got %+v", Restitution, v)
	}
	if b.Box().Bounds().MaxY > 100 {
		t.Fatalf("committed box should not penetrate the floor, bounds %+v", b.Box().Bounds())
	}
}

func TestBody_HeadOnCollisionStops(t *testing.T) {
	b := NewBody(geom.Pt(0, 90), math.Pi/2, frictionless)
	b.SetVelocity(geom.Vec(0, 200))
	hits := b.Step(100, &floorWall{y: 100})
	if len(hits) != 1 {
		t.Fatalf("head-on hit should resolve in one iteration, got %d", len(hits))
	}
	if !b.Velocity().IsZero() {
		t.Fatalf("head-on hit should stop the body, got %+v", b.Velocity())
	}
	if b.Position() != geom.Pt(0, 90) {
		t.Fatalf("stopped body should stay put, got %+v", b.Position())
	}
	if hits[0].ImpactForce <= 0 {
		t.Fatal("head-on hit should carry an impact force")
	}
}

func TestBody_CollisionLoopIsBounded(t *testing.T) {
	b := NewBody(geom.Pt(0, 0), 0, testVolume)
	b.SetVelocity(geom.Vec(100, 0))
	walls := &alwaysWall{}
	hits := b.Step(33, walls)
	if len(hits) != MaxCollisionIterations {
		t.Fatalf("expected %d resolutions, got %d", MaxCollisionIterations, len(hits))
	}
	if walls.calls != MaxCollisionIterations {
		t.Fatalf("detector should be called at most %d times, got %d", MaxCollisionIterations, walls.calls)
	}
	want := 100 * math.Pow(Restitution, MaxCollisionIterations)
	if math.Abs(b.Speed()-want) > 0.5 {
		t.Fatalf("expected speed near %.3f after the capped loop, got %.3f", want, b.Speed())
	}
}

func TestVolume_SectionBlend(t *testing.T) {
	v := Volume{Length: 10, Beam: 2}
	if math.Abs(v.Section(0)-2) > 1e-9 {
		t.Fatalf("head-on section should equal the beam, got %.3f", v.Section(0))
	}
	if math.Abs(v.Section(math.Pi/2)-10) > 1e-9 {
		t.Fatalf("broadside section should equal the length, got %.3f", v.Section(math.Pi/2))
	}
}
