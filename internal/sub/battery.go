package sub

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/action"
)

// Battery stores energy. While discharging it is a source; otherwise it
// draws its charge rate until full.
type Battery struct {
	base
	cfg       BatteryConfig
	charge    float64
	discharge *action.Action[*Context]
}

func newBattery(id int, cfg BatteryConfig, op *action.OperatorToken, repairMs float64) *Battery {
	b := &Battery{cfg: cfg, charge: clamp(cfg.InitialCharge, 0, cfg.Capacity)}
	b.init(id, KindBattery, cfg.Common, op, repairMs, b)
	b.nominal = cfg.ChargeRate
	b.discharge = b.addAction(action.Options{ID: "discharge", Kind: action.Toggle}, dischargeBehavior{b})
	return b
}

func (b *Battery) Charge() float64                     { return b.charge }
func (b *Battery) Capacity() float64                   { return b.cfg.Capacity * b.efficiency() }
func (b *Battery) Discharge() *action.Action[*Context] { return b.discharge }

// Discharging reports whether the battery is set to supply power.
func (b *Battery) Discharging() bool { return b.discharge.Value() }

// NeedsCharging reports whether the battery can take more charge.
func (b *Battery) NeedsCharging() bool { return b.charge < b.Capacity() }

// ProvidesCharge reports whether the battery is currently a power source.
func (b *Battery) ProvidesCharge() bool {
	return b.On() && b.Discharging() && b.charge > 0
}

// PowerGeneration is the discharge rate while supplying.
func (b *Battery) PowerGeneration() float64 {
	if !b.ProvidesCharge() {
		return 0
	}
	return b.cfg.DischargeRate
}

// PowerConsumption is the charge rate while charging and not full.
func (b *Battery) PowerConsumption() float64 {
	if !b.On() || b.Discharging() || !b.NeedsCharging() {
		return 0
	}
	return b.NominalPowerConsumption()
}

func (b *Battery) gatePower(_ *Context, r *action.Reasons) {
	if b.Discharging() && b.charge <= 0 {
		r.Add("battery is empty")
	}
}

// startupDraw is zero in discharge mode: the battery comes on as a source.
func (b *Battery) startupDraw() float64 {
	if b.Discharging() {
		return 0
	}
	return b.NominalPowerConsumption()
}

// Update moves charge in or out for the elapsed time.
func (b *Battery) Update(ctx *Context) {
	// Rates as the rest of the sub saw them this tick.
	gen, draw := b.PowerGeneration(), b.PowerConsumption()
	b.tick(ctx)
	dt := ctx.DeltaMs / 1000
	b.charge = math.Min(b.Capacity(), b.charge+(b.cfg.ChargeRate*boolf(draw > 0)-gen)*dt)
	if b.charge <= 0 {
		b.charge = 0
		if gen > 0 {
			ctx.Log.Add(ctx.Tick, b.name, "sub", "power", "battery", "drained", 0)
		}
	}
}

func (b *Battery) View() View {
	return b.view(b, map[string]float64{
		"charge":      b.charge,
		"capacity":    b.Capacity(),
		"discharging": boolf(b.Discharging()),
	})
}

type dischargeBehavior struct{ b *Battery }

func (d dischargeBehavior) Check(_ *Context, r *action.Reasons) {
	if !d.b.Discharging() && d.b.charge <= 0 {
		r.Add("battery is empty")
	}
}

func (d dischargeBehavior) Complete(ctx *Context) {
	mode := "charging"
	if d.b.Discharging() {
		mode = "discharging"
	}
	ctx.Log.Add(ctx.Tick, d.b.name, "sub", "power", "battery", mode, d.b.charge)
}

func boolf(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
