package entity

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/geom"
)

const (
	// arriveRadius is how close a MoveTo plan must get to its point.
	arriveRadius = 20.0
	// moveTimeoutMs abandons MoveTo plans that stall against walls.
	moveTimeoutMs = 8000.0
	// followGap is the distance a follower keeps to its leader.
	followGap = 40.0
	// backOffDistance is how far a BackOff plan retreats.
	backOffDistance = 150.0
)

// Plan is a short-lived intention. Target returns where the fish wants to
// be; false means hold position.
type Plan interface {
	Name() string
	Valid(f *Fish, ctx *Context) bool
	Target(f *Fish, ctx *Context) (geom.Point, bool)
}

// WaitPlan idles until a deadline.
type WaitPlan struct {
	Until float64
}

func (p *WaitPlan) Name() string                              { return "wait" }
func (p *WaitPlan) Valid(_ *Fish, ctx *Context) bool          { return ctx.Now < p.Until }
func (p *WaitPlan) Target(*Fish, *Context) (geom.Point, bool) { return geom.Point{}, false }

// MoveToPlan swims to a point.
type MoveToPlan struct {
	Point geom.Point
	Until float64
}

func (p *MoveToPlan) Name() string { return "move-to" }

func (p *MoveToPlan) Valid(f *Fish, ctx *Context) bool {
	return ctx.Now < p.Until && f.Position().DistanceTo(p.Point) > arriveRadius
}

func (p *MoveToPlan) Target(*Fish, *Context) (geom.Point, bool) { return p.Point, true }

// FollowPlan schools behind another fish while it stays in sight.
type FollowPlan struct {
	Leader *Fish
	Until  float64
}

func (p *FollowPlan) Name() string { return "follow" }

func (p *FollowPlan) Valid(f *Fish, ctx *Context) bool {
	l := p.Leader
	if l == nil || !l.Alive() || ctx.Now >= p.Until {
		return false
	}
	d := f.Position().DistanceTo(l.Position())
	return d <= f.species.Sight && ctx.Map.LineOfSight(f.Position(), l.Position())
}

func (p *FollowPlan) Target(f *Fish, _ *Context) (geom.Point, bool) {
	lp := p.Leader.Position()
	if f.Position().DistanceTo(lp) <= followGap {
		return geom.Point{}, false
	}
	return lp.Add(p.Leader.Body().Heading().Scale(-followGap)), true
}

// BackOffPlan retreats away from a point, used after hitting a wall or biting.
type BackOffPlan struct {
	From  geom.Point
	Until float64
}

func (p *BackOffPlan) Name() string                     { return "back-off" }
func (p *BackOffPlan) Valid(_ *Fish, ctx *Context) bool { return ctx.Now < p.Until }

func (p *BackOffPlan) Target(f *Fish, _ *Context) (geom.Point, bool) {
	away := f.Position().Sub(p.From)
	if away.LengthSq() < geom.Epsilon {
		away = f.Body().Heading().Neg()
	}
	return f.Position().Add(away.Normalize().Scale(backOffDistance)), true
}

// AttackPlan chases the submarine while it is visible.
type AttackPlan struct{}

func (p *AttackPlan) Name() string { return "attack" }

func (p *AttackPlan) Valid(f *Fish, ctx *Context) bool { return f.canSeeSub(ctx) }

func (p *AttackPlan) Target(_ *Fish, ctx *Context) (geom.Point, bool) { return ctx.SubPos, true }

// Agent holds a fish's current plan and re-derives it when it goes stale.
type Agent struct {
	plan    Plan
	changes int
}

// Plan returns the current plan, or nil.
func (a *Agent) Plan() Plan { return a.plan }

// Changes counts how many plans were adopted.
func (a *Agent) Changes() int { return a.changes }

// Set replaces the current plan.
func (a *Agent) Set(f *Fish, ctx *Context, p Plan) {
	prev := "none"
	if a.plan != nil {
		prev = a.plan.Name()
	}
	a.plan = p
	a.changes++
	ctx.Log.AddVerbose(ctx.Tick, f.Label(), "fish", "plan", "change", prev+" → "+p.Name(), 0)
}

// Refresh keeps a valid plan and otherwise chooses a new one.
func (a *Agent) Refresh(f *Fish, ctx *Context) {
	if a.plan != nil && a.plan.Valid(f, ctx) {
		return
	}
	a.Set(f, ctx, choosePlan(f, ctx))
}

// choosePlan picks the next intention. Planning failures fall back to waiting.
func choosePlan(f *Fish, ctx *Context) Plan {
	sp := f.species
	if sp.Aggressive && !f.effects.Has(cooldownEffect) && f.canSeeSub(ctx) {
		return &AttackPlan{}
	}
	roll := ctx.Rng.Float64()
	if roll < 0.3 {
		if leader := f.nearestSchoolmate(ctx); leader != nil {
			return &FollowPlan{Leader: leader, Until: ctx.Now + 4000 + ctx.Rng.Float64()*4000}
		}
	}
	if roll < 0.8 {
		p, err := ctx.Map.RandomPointInSight(ctx.Rng, f.Position(), sp.Sight, f.Radius())
		if err == nil {
			return &MoveToPlan{Point: p, Until: ctx.Now + moveTimeoutMs}
		}
	}
	return &WaitPlan{Until: ctx.Now + 500 + ctx.Rng.Float64()*1500}
}

// steerTorque turns toward heading with a damped proportional controller.
func steerTorque(angleErr, angularVelocity, maxTorque float64) float64 {
	t := 2*angleErr - 0.8*angularVelocity
	return math.Max(-1, math.Min(1, t)) * maxTorque
}
