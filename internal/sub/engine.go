package sub

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/action"
)

// Engine turns power into thrust and turning torque. Its draw follows the
// absolute throttle.
type Engine struct {
	base
	cfg      EngineConfig
	throttle float64
}

func newEngine(id int, cfg EngineConfig, op *action.OperatorToken, repairMs float64) *Engine {
	e := &Engine{cfg: cfg}
	e.init(id, KindEngine, cfg.Common, op, repairMs, nil)
	return e
}

func (e *Engine) Throttle() float64 { return e.throttle }

// PowerConsumption is nominal·|throttle|, and zero while off.
func (e *Engine) PowerConsumption() float64 {
	if !e.On() {
		return 0
	}
	return e.NominalPowerConsumption() * math.Abs(e.throttle)
}

// Thrust is the force along the heading at the current throttle.
func (e *Engine) Thrust() float64 {
	if !e.On() {
		return 0
	}
	return e.cfg.MaxThrust * e.throttle * e.efficiency()
}

// Torque is the turning torque available to steering.
func (e *Engine) Torque() float64 {
	if !e.On() {
		return 0
	}
	return e.cfg.MaxTorque * e.efficiency()
}

// Update follows the sub's throttle.
func (e *Engine) Update(ctx *Context) {
	e.tick(ctx)
	e.throttle = ctx.Sub.Throttle()
}

func (e *Engine) View() View {
	return e.view(e, map[string]float64{
		"throttle":   e.throttle,
		"thrust":     e.Thrust(),
		"torque":     e.Torque(),
		"efficiency": e.efficiency(),
	})
}
