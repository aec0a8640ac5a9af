package physics

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/collision"
	"github.com/Garsondee/Sub-Sense/internal/geom"
)

const (
	// WaterDensity scales every drag term.
	WaterDensity = 1.0
	// AngularDragFactor scales rotational drag relative to linear drag.
	AngularDragFactor = 40.0

	// SpeedEpsilon (px/s) below which an unforced body stops.
	SpeedEpsilon = 0.5
	// AngularEpsilon (rad/s) below which an untorqued body stops turning.
	AngularEpsilon = 0.01

	// MaxCollisionIterations bounds the resolve-and-reproject loop per step.
	MaxCollisionIterations = 50
	// Restitution is the share of tangential velocity kept after a wall hit.
	Restitution = 0.95
)

// WallDetector reports the wall edge a projected box runs into.
type WallDetector interface {
	DetectWallCollision(bb *geom.BoundingBox, velocityHint geom.Vector) (collision.Contact, bool)
}

// Collision is the resolved wall hit handed back to the owning entity.
type Collision struct {
	ObstacleID    int
	Normal        geom.Vector
	RelativeAngle float64 // velocity heading minus wall heading, in [-π, π]
	ImpactAngle   float64 // 0 for a graze, π/2 for a head-on hit
	ImpactForce   float64 // normal momentum removed by the wall
}

// Telemetry is what the body applied during its last step.
type Telemetry struct {
	Force       geom.Vector
	Torque      float64
	Drag        geom.Vector
	AngularDrag float64
}

// Body is the physical state of one entity.
type Body struct {
	volume Volume
	box    *geom.BoundingBox

	velocity        geom.Vector
	angularVelocity float64

	force  geom.Vector
	torque float64

	last Telemetry
}

// NewBody places a body at pos facing orientation.
func NewBody(pos geom.Point, orientation float64, v Volume) *Body {
	return &Body{
		volume: v,
		box:    geom.NewBoundingBox(pos, geom.WrapAngle(orientation), v.Length, v.Beam),
	}
}

func (b *Body) Volume() Volume                { return b.volume }
func (b *Body) Box() *geom.BoundingBox        { return b.box }
func (b *Body) Position() geom.Point          { return b.box.Position() }
func (b *Body) Orientation() float64          { return b.box.Orientation() }
func (b *Body) Velocity() geom.Vector         { return b.velocity }
func (b *Body) AngularVelocity() float64      { return b.angularVelocity }
func (b *Body) PendingForce() geom.Vector     { return b.force }
func (b *Body) PendingTorque() float64        { return b.torque }
func (b *Body) LastTelemetry() Telemetry      { return b.last }
func (b *Body) Speed() float64                { return b.velocity.Length() }
func (b *Body) Heading() geom.Vector          { return b.box.Heading() }
func (b *Body) SetVelocity(v geom.Vector)     { b.velocity = v }
func (b *Body) SetAngularVelocity(w float64)  { b.angularVelocity = w }
func (b *Body) Polygon() geom.Polygon         { return b.box.Polygon() }
func (b *Body) Radius() float64               { return b.box.Radius() }
func (b *Body) Place(p geom.Point, o float64) { b.box.Set(p, geom.WrapAngle(o)) }

// ApplyForce accumulates a world-space force for the next step.
func (b *Body) ApplyForce(f geom.Vector) { b.force = b.force.Add(f) }

// ApplyThrust accumulates a force of magnitude f along the heading.
func (b *Body) ApplyThrust(f float64) { b.ApplyForce(b.Heading().Scale(f)) }

// ApplyTorque accumulates torque for the next step. Positive turns toward +y.
func (b *Body) ApplyTorque(t float64) { b.torque += t }

// Idle reports whether a step would change nothing.
func (b *Body) Idle() bool {
	return b.velocity.IsZero() && b.angularVelocity == 0 && b.force.IsZero() && b.torque == 0
}

// dragForce opposes the current velocity with ½ρv²·Cd·A(α).
func (b *Body) dragForce() geom.Vector {
	speed := b.velocity.Length()
	if speed == 0 {
		return geom.Vector{}
	}
	alpha := b.velocity.Angle() - b.Orientation()
	mag := 0.5 * WaterDensity * speed * speed * b.volume.Drag * b.volume.Section(alpha)
	return b.velocity.Scale(-mag / speed)
}

func (b *Body) angularDrag() float64 {
	w := b.angularVelocity
	mag := 0.5 * WaterDensity * w * w * b.volume.Drag * b.volume.SideSection() * AngularDragFactor
	if w > 0 {
		return -mag
	}
	return mag
}

// Step advances the body by deltaMs and returns the wall collisions it
// resolved on the way.
//
// The resolve loop runs at most MaxCollisionIterations times. When the cap
// is reached the last projection is committed as is, so the box may overlap
// an obstacle by at most one step's displacement (|v|·dt).
func (b *Body) Step(deltaMs float64, walls WallDetector) []Collision {
	if b.Idle() || deltaMs <= 0 {
		b.last = Telemetry{}
		return nil
	}
	dt := deltaMs / 1000
	m := b.volume.Mass
	inertia := b.volume.Inertia()

	drag := b.dragForce()
	vel := b.velocity.Add(b.force.Scale(dt / m))
	// Drag alone never reverses the direction of travel.
	dragDv := drag.Scale(dt / m)
	if dragDv.Length() >= b.velocity.Length() {
		dragDv = b.velocity.Neg()
	}
	vel = vel.Add(dragDv)
	if b.force.IsZero() && vel.Length() < SpeedEpsilon {
		vel = geom.Vector{}
	}

	angDrag := b.angularDrag()
	angVel := b.angularVelocity + b.torque*dt/inertia
	angDragDv := angDrag * dt / inertia
	if math.Abs(angDragDv) >= math.Abs(b.angularVelocity) {
		angDragDv = -b.angularVelocity
	}
	angVel += angDragDv
	if b.torque == 0 && math.Abs(angVel) < AngularEpsilon {
		angVel = 0
	}

	start := b.box.Position()
	startO := b.box.Orientation()
	proj := b.box.Clone()
	proj.Set(start.Add(vel.Scale(dt)), geom.WrapAngle(startO+angVel*dt))

	var hits []Collision
	if walls != nil {
		for i := 0; i < MaxCollisionIterations; i++ {
			contact, ok := walls.DetectWallCollision(proj, vel)
			if !ok {
				break
			}
			var c Collision
			vel, angVel, c = b.resolve(contact, vel, dt)
			hits = append(hits, c)
			proj.Set(start.Add(vel.Scale(dt)), geom.WrapAngle(startO+angVel*dt))
			if vel.IsZero() && angVel == 0 {
				break
			}
		}
	}

	b.box.Set(proj.Position(), proj.Orientation())
	b.velocity = vel
	b.angularVelocity = angVel
	b.last = Telemetry{Force: b.force, Torque: b.torque, Drag: drag, AngularDrag: angDrag}
	b.force = geom.Vector{}
	b.torque = 0
	return hits
}

// resolve keeps only the velocity component along the impacted wall.
func (b *Body) resolve(c collision.Contact, vel geom.Vector, dt float64) (geom.Vector, float64, Collision) {
	wall := c.Edge.Heading()
	speed := vel.Length()
	rel := 0.0
	if speed > 0 {
		rel = geom.NormalizeAngle(vel.Angle() - wall)
	}
	along := speed * math.Cos(rel)
	across := speed * math.Sin(rel)

	out := geom.FromPolar(wall, along*Restitution)
	if out.Length() < SpeedEpsilon {
		out = geom.Vector{}
	}
	ang := b.torque * Restitution * dt / b.volume.Inertia()
	if math.Abs(ang) < AngularEpsilon {
		ang = 0
	}

	impact := math.Abs(rel)
	if impact > math.Pi/2 {
		impact = math.Pi - impact
	}
	return out, ang, Collision{
		ObstacleID:    c.ObstacleID,
		Normal:        c.Normal,
		RelativeAngle: rel,
		ImpactAngle:   impact,
		ImpactForce:   b.volume.Mass * math.Abs(across),
	}
}
