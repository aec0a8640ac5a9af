package sub

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/action"
)

// idleDraw is the share of nominal draw a pump takes with nothing to pump.
const idleDraw = 0.1

// Pump drains flood water let in by hull leaks.
type Pump struct {
	base
	cfg     PumpConfig
	load    float64 // share of nominal draw in use
	drained float64
}

func newPump(id int, cfg PumpConfig, op *action.OperatorToken, repairMs float64) *Pump {
	p := &Pump{cfg: cfg, load: idleDraw}
	p.init(id, KindPump, cfg.Common, op, repairMs, nil)
	return p
}

// Drained is the total volume pumped out.
func (p *Pump) Drained() float64 { return p.drained }

// PowerConsumption is the full draw while water is being moved and a
// trickle otherwise.
func (p *Pump) PowerConsumption() float64 {
	if !p.On() {
		return 0
	}
	return p.NominalPowerConsumption() * p.load
}

// Update drains flood water from the hull.
func (p *Pump) Update(ctx *Context) {
	p.tick(ctx)
	p.load = idleDraw
	if !p.On() || ctx.Sub.Flood() <= 0 {
		return
	}
	p.load = 1
	want := p.cfg.Rate * p.efficiency() * ctx.DeltaMs / 1000
	got := math.Min(want, ctx.Sub.Flood())
	ctx.Sub.drain(got)
	p.drained += got
}

func (p *Pump) View() View {
	return p.view(p, map[string]float64{
		"rate":    p.cfg.Rate * p.efficiency(),
		"drained": p.drained,
	})
}
