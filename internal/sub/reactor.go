package sub

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/effect"
)

// Reactor is the main power source. Its output ramps toward the control
// value, it heats when producing more than is drawn and burns fuel in
// proportion to output.
type Reactor struct {
	base
	cfg     ReactorConfig
	control float64
	output  float64
	heat    float64
	fuel    float64

	scram  *action.Action[*Context]
	refuel *action.Action[*Context]
}

func newReactor(id int, cfg ReactorConfig, op *action.OperatorToken, repairMs float64) *Reactor {
	r := &Reactor{
		cfg:     cfg,
		control: clamp(cfg.InitialControl, 0, 1),
		fuel:    cfg.FuelCapacity,
	}
	r.init(id, KindReactor, cfg.Common, op, repairMs, r)
	if cfg.On {
		r.output = r.control * cfg.MaxOutput
	}
	r.scram = r.addAction(action.Options{ID: "scram", Kind: action.Instant}, scramBehavior{r})
	r.refuel = r.addAction(action.Options{
		ID:       "refuel",
		Kind:     action.Operator,
		Duration: cfg.RefuelMs,
		Costs:    []action.Cost{{Material: FuelRod, Count: 1}},
		Operator: op,
	}, refuelBehavior{r})
	return r
}

func (r *Reactor) Control() float64                 { return r.control }
func (r *Reactor) Output() float64                  { return r.output }
func (r *Reactor) Heat() float64                    { return r.heat }
func (r *Reactor) Fuel() float64                    { return r.fuel }
func (r *Reactor) Scram() *action.Action[*Context]  { return r.scram }
func (r *Reactor) Refuel() *action.Action[*Context] { return r.refuel }

// FuelLevel is the remaining fuel as a share of capacity.
func (r *Reactor) FuelLevel() float64 {
	if r.cfg.FuelCapacity <= 0 {
		return 0
	}
	return r.fuel / r.cfg.FuelCapacity
}

// PowerGeneration is the current output while on.
func (r *Reactor) PowerGeneration() float64 {
	if !r.On() {
		return 0
	}
	return r.output
}

func (r *Reactor) gatePower(_ *Context, rs *action.Reasons) {
	if r.fuel <= 0 {
		rs.Add("no fuel")
	}
}

// Update ramps output and burns fuel. Heat is integrated by updateHeat once
// every subsystem has set its draw for the tick.
func (r *Reactor) Update(ctx *Context) {
	r.tick(ctx)
	dt := ctx.DeltaMs / 1000
	r.control = clamp(ctx.value(ReactorControlKey, r.control), 0, 1)

	if !r.On() {
		r.output = 0
	} else {
		target := r.control * r.cfg.MaxOutput * r.efficiency()
		if r.output < target {
			r.output = math.Min(target, r.output+r.cfg.RampUp*dt)
		} else {
			r.output = math.Max(target, r.output-r.cfg.RampDown*dt)
		}
	}

	if r.output > 0 {
		r.fuel -= r.output * r.cfg.BurnRate * dt
		if r.fuel <= 0 {
			r.fuel = 0
			r.ShutDown(ctx, "fuel depleted")
		}
	}
}

// updateHeat moves heat toward two thirds of output and adds the surplus
// over this tick's demand.
func (r *Reactor) updateHeat(ctx *Context) {
	dt := ctx.DeltaMs / 1000
	cool := 2.0 / 3.0 * r.output
	r.heat += (cool - r.heat) * math.Min(1, r.cfg.CoolRate*dt)
	if demand := ctx.Sub.PowerConsumption(); r.output > demand {
		r.heat += (r.output - demand) * r.cfg.HeatRate * dt
	}
	if r.cfg.MaxHeat > 0 && r.heat > 0.8*r.cfg.MaxHeat {
		r.effects.Refresh(effect.Timed(effect.Overheat, 1000, r.heat/r.cfg.MaxHeat, r.name))
	}
	if r.cfg.MaxHeat > 0 && r.heat >= r.cfg.MaxHeat {
		r.ShutDown(ctx, "overheat")
	}
}

// ShutDown stops the reaction at once.
func (r *Reactor) ShutDown(ctx *Context, reason string) {
	r.base.ShutDown(ctx, reason)
	r.output = 0
}

func (r *Reactor) View() View {
	return r.view(r, map[string]float64{
		"control": r.control,
		"output":  r.output,
		"heat":    r.heat,
		"maxHeat": r.cfg.MaxHeat,
		"fuel":    r.fuel,
		"maxFuel": r.cfg.FuelCapacity,
	})
}

// scramBehavior drops the control rods.
type scramBehavior struct{ r *Reactor }

func (s scramBehavior) Check(_ *Context, rs *action.Reasons) { s.r.requirePower(rs) }

func (s scramBehavior) Complete(ctx *Context) {
	s.r.control = 0
	ctx.setValue(ReactorControlKey, 0)
	s.r.ShutDown(ctx, "scram")
}

// refuelBehavior loads one fuel rod into a cold reactor.
type refuelBehavior struct{ r *Reactor }

func (f refuelBehavior) Check(_ *Context, rs *action.Reasons) {
	if f.r.On() {
		rs.Add("shut the reactor down first")
	}
	if f.r.fuel >= f.r.cfg.FuelCapacity {
		rs.Add("fuel tank full")
	}
}

func (f refuelBehavior) Complete(ctx *Context) {
	f.r.fuel = math.Min(f.r.cfg.FuelCapacity, f.r.fuel+f.r.cfg.FuelPerRod)
	ctx.Log.Add(ctx.Tick, f.r.name, "sub", "action", "refuel", "rod loaded", f.r.fuel)
}
