package entity

import (
	"fmt"
	"math"

	"github.com/Garsondee/Sub-Sense/internal/effect"
	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/physics"
)

const (
	startledEffect = effect.Startled
	cooldownEffect = effect.Cooldown
	stunnedEffect  = effect.Stunned

	startledMs = 1500.0
	backOffMs  = 1200.0
)

// Species is the static stat block of a kind of fish.
type Species struct {
	Name             string
	Length           float64
	Beam             float64
	Mass             float64
	Drag             float64
	Thrust           float64
	Torque           float64
	Sight            float64
	AttackRange      float64
	AttackDamage     float64
	AttackCooldownMs float64
	Health           float64
	Aggressive       bool
}

// Volume is the species' hull shape.
func (s Species) Volume() physics.Volume {
	return physics.Volume{Length: s.Length, Beam: s.Beam, Mass: s.Mass, Drag: s.Drag}
}

// DefaultSpecies returns the stock fish table.
func DefaultSpecies() []Species {
	return []Species{
		{Name: "sardine", Length: 14, Beam: 5, Mass: 2, Drag: 0.3, Thrust: 300, Torque: 40,
			Sight: 250, Health: 5},
		{Name: "grouper", Length: 36, Beam: 16, Mass: 30, Drag: 0.4, Thrust: 2000, Torque: 900,
			Sight: 300, Health: 25},
		{Name: "barracuda", Length: 42, Beam: 9, Mass: 20, Drag: 0.25, Thrust: 3000, Torque: 700,
			Sight: 420, AttackRange: 12, AttackDamage: 4, AttackCooldownMs: 2500, Health: 18, Aggressive: true},
	}
}

// Fish is an AI-driven swimmer.
type Fish struct {
	Base
	species Species
	health  float64
	agent   Agent
	bites   int
}

// NewFish spawns a fish of species sp.
func NewFish(id int, sp Species, pos geom.Point, orientation float64) *Fish {
	body := physics.NewBody(pos, orientation, sp.Volume())
	return &Fish{
		Base:    NewBase(id, KindFish, fmt.Sprintf("F%d", id), body),
		species: sp,
		health:  sp.Health,
	}
}

func (f *Fish) Species() Species { return f.species }
func (f *Fish) Health() float64  { return f.health }
func (f *Fish) Alive() bool      { return f.health > 0 }
func (f *Fish) Agent() *Agent    { return &f.agent }
func (f *Fish) Bites() int       { return f.bites }

// PlanName returns the current plan's name, or "none".
func (f *Fish) PlanName() string {
	if p := f.agent.Plan(); p != nil {
		return p.Name()
	}
	return "none"
}

// Hit applies damage and startles the fish. It returns true when it dies.
func (f *Fish) Hit(damage float64, source string) bool {
	if !f.Alive() {
		return false
	}
	f.health = math.Max(0, f.health-damage)
	f.effects.Refresh(effect.Timed(stunnedEffect, 400, damage, source))
	f.effects.Refresh(effect.Timed(startledEffect, startledMs, 1, source))
	return !f.Alive()
}

func (f *Fish) canSeeSub(ctx *Context) bool {
	if !f.species.Aggressive || f.effects.Has(startledEffect) {
		return false
	}
	d := f.Position().DistanceTo(ctx.SubPos)
	return d <= f.species.Sight && ctx.Map.LineOfSight(f.Position(), ctx.SubPos)
}

// nearestSchoolmate finds the closest visible fish of the same species.
func (f *Fish) nearestSchoolmate(ctx *Context) *Fish {
	var best *Fish
	bestD := math.Inf(1)
	for _, m := range ctx.Map.GetEntitiesAround(f.Position(), f.species.Sight) {
		o, ok := m.(*Fish)
		if !ok || o == f || !o.Alive() || o.species.Name != f.species.Name {
			continue
		}
		d := f.Position().DistanceTo(o.Position())
		if d < bestD && d <= f.species.Sight && ctx.Map.LineOfSight(f.Position(), o.Position()) {
			best, bestD = o, d
		}
	}
	return best
}

// Update runs one tick: effects, planning, steering, physics, collision
// reactions and attacks. The caller re-buckets the fish afterwards.
func (f *Fish) Update(ctx *Context) []physics.Collision {
	if !f.Alive() {
		return nil
	}
	f.effects.Update(ctx.DeltaMs)
	f.agent.Refresh(f, ctx)

	if !f.effects.Has(stunnedEffect) {
		f.steer(ctx)
	}
	cols := f.body.Step(ctx.DeltaMs, ctx.Map)
	if len(cols) > 0 {
		c := cols[0]
		f.effects.Refresh(effect.Timed(startledEffect, startledMs, c.ImpactForce, "wall"))
		from := f.Position().Add(c.Normal.Scale(-backOffDistance))
		f.agent.Set(f, ctx, &BackOffPlan{From: from, Until: ctx.Now + backOffMs})
		ctx.Log.AddVerbose(ctx.Tick, f.label, "fish", "collision", "wall",
			fmt.Sprintf("obstacle %d", c.ObstacleID), c.ImpactForce)
	}
	f.tryAttack(ctx)
	return cols
}

func (f *Fish) steer(ctx *Context) {
	p := f.agent.Plan()
	if p == nil {
		return
	}
	target, ok := p.Target(f, ctx)
	b := f.body
	if !ok {
		b.ApplyTorque(steerTorque(0, b.AngularVelocity(), f.species.Torque))
		return
	}
	to := target.Sub(f.Position())
	if to.LengthSq() < geom.Epsilon {
		return
	}
	angleErr := geom.NormalizeAngle(to.Angle() - b.Orientation())
	b.ApplyTorque(steerTorque(angleErr, b.AngularVelocity(), f.species.Torque))
	if math.Abs(angleErr) < math.Pi/3 {
		throttle := math.Cos(angleErr)
		if _, chasing := p.(*AttackPlan); !chasing {
			throttle *= 0.6
		}
		b.ApplyThrust(f.species.Thrust * throttle)
	}
}

func (f *Fish) tryAttack(ctx *Context) {
	if _, ok := f.agent.Plan().(*AttackPlan); !ok || f.effects.Has(cooldownEffect) {
		return
	}
	reach := f.species.AttackRange + f.species.Length/2 + ctx.SubRadius
	if f.Position().DistanceTo(ctx.SubPos) > reach {
		return
	}
	ctx.Attack(Attack{From: f.id, Label: f.label, Damage: f.species.AttackDamage, Point: f.Position()})
	f.bites++
	f.effects.Add(effect.Timed(cooldownEffect, f.species.AttackCooldownMs, 0, "bite"))
	f.agent.Set(f, ctx, &BackOffPlan{From: ctx.SubPos, Until: ctx.Now + backOffMs})
	ctx.Log.Add(ctx.Tick, f.label, "fish", "attack", "bite", "sub", f.species.AttackDamage)
}

// View is the plain snapshot of a fish.
type View struct {
	ID          int     `json:"id"`
	Label       string  `json:"label"`
	Species     string  `json:"species"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"`
	Length      float64 `json:"length"`
	Beam        float64 `json:"beam"`
	Health      float64 `json:"health"`
	Plan        string  `json:"plan"`
	Aggressive  bool    `json:"aggressive"`
}

// View returns the plain snapshot of f.
func (f *Fish) View() View {
	p := f.Position()
	return View{
		ID:          f.id,
		Label:       f.label,
		Species:     f.species.Name,
		X:           p.X,
		Y:           p.Y,
		Orientation: f.body.Orientation(),
		Length:      f.species.Length,
		Beam:        f.species.Beam,
		Health:      f.health,
		Plan:        f.PlanName(),
		Aggressive:  f.species.Aggressive,
	}
}
