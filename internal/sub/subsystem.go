package sub

import (
	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/effect"
)

// Kind is the subsystem family.
type Kind int

const (
	KindReactor Kind = iota
	KindBattery
	KindEngine
	KindSteering
	KindWeapon
	KindSonar
	KindPump
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindReactor:
		return "reactor"
	case KindBattery:
		return "battery"
	case KindEngine:
		return "engine"
	case KindSteering:
		return "steering"
	case KindWeapon:
		return "weapon"
	case KindSonar:
		return "sonar"
	case KindPump:
		return "pump"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Subsystem is one powered unit on the equipment grid. The set of
// implementations is closed to this package.
type Subsystem interface {
	ID() int
	Name() string
	Kind() Kind
	IsEngine() bool
	IsReactor() bool

	On() bool
	NominalPowerConsumption() float64
	PowerConsumption() float64
	PowerGeneration() float64

	Power() *action.Action[*Context]
	Actions() []*action.Action[*Context]
	Effects() *effect.Bag
	Damage() []Damage
	AddDamage(d Damage)
	Cell() Cell
	Size() Cell

	Update(ctx *Context)
	ShutDown(ctx *Context, reason string)
	View() View

	setCell(c Cell)
}

// View is the plain snapshot of a subsystem.
type View struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Kind        string             `json:"kind"`
	Cell        Cell               `json:"cell"`
	Size        Cell               `json:"size"`
	On          bool               `json:"on"`
	Nominal     float64            `json:"nominal"`
	Consumption float64            `json:"consumption"`
	Generation  float64            `json:"generation"`
	Actions     []action.View      `json:"actions"`
	Effects     []effect.View      `json:"effects,omitempty"`
	Damage      []Damage           `json:"damage,omitempty"`
	Stats       map[string]float64 `json:"stats,omitempty"`
}

// powerGate lets a family add its own conditions for switching on.
type powerGate interface {
	gatePower(ctx *Context, r *action.Reasons)
}

// startupDrawer is a powerGate whose headroom need differs from its
// nominal draw, such as a unit that comes on as a source.
type startupDrawer interface {
	startupDraw() float64
}

// base carries what every subsystem shares: identity, grid placement, the
// power toggle, the repair action, effects and damage.
type base struct {
	id      int
	name    string
	kind    Kind
	cell    Cell
	size    Cell
	nominal float64

	power   *action.Action[*Context]
	repair  *action.Action[*Context]
	actions []*action.Action[*Context]
	effects effect.Bag
	damage  []Damage
}

func (b *base) init(id int, kind Kind, c Common, op *action.OperatorToken, repairMs float64, gate powerGate) {
	b.id = id
	b.name = c.Name
	b.kind = kind
	b.cell = c.Cell
	b.size = c.Size
	if b.size.X <= 0 || b.size.Y <= 0 {
		b.size = Cell{1, 1}
	}
	b.nominal = c.Nominal
	b.power = action.New[*Context](action.Options{
		ID:      b.actionID("power"),
		Name:    "power",
		Kind:    action.Toggle,
		Initial: c.On,
	}, &powerBehavior{b: b, gate: gate})
	b.repair = action.New[*Context](action.Options{
		ID:       b.actionID("repair"),
		Name:     "repair",
		Kind:     action.Operator,
		Duration: repairMs,
		Costs:    []action.Cost{{Material: SpareParts, Count: 1}},
		Operator: op,
	}, &repairBehavior{b: b})
	b.actions = []*action.Action[*Context]{b.power, b.repair}
}

func (b *base) actionID(name string) string { return b.name + "." + name }

// addAction registers a family-specific action.
func (b *base) addAction(o action.Options, bh action.Behavior[*Context]) *action.Action[*Context] {
	o.ID = b.actionID(o.ID)
	a := action.New[*Context](o, bh)
	b.actions = append(b.actions, a)
	return a
}

func (b *base) ID() int                             { return b.id }
func (b *base) Name() string                        { return b.name }
func (b *base) Kind() Kind                          { return b.kind }
func (b *base) IsEngine() bool                      { return b.kind == KindEngine }
func (b *base) IsReactor() bool                     { return b.kind == KindReactor }
func (b *base) On() bool                            { return b.power.Value() }
func (b *base) Power() *action.Action[*Context]     { return b.power }
func (b *base) Actions() []*action.Action[*Context] { return b.actions }
func (b *base) Effects() *effect.Bag                { return &b.effects }
func (b *base) Damage() []Damage                    { return b.damage }
func (b *base) Cell() Cell                          { return b.cell }
func (b *base) Size() Cell                          { return b.size }
func (b *base) setCell(c Cell)                      { b.cell = c }

// NominalPowerConsumption is the full-power draw including damage.
func (b *base) NominalPowerConsumption() float64 { return b.nominal * b.drawFactor() }

// PowerConsumption is the nominal draw while on. Families with a variable
// draw override it.
func (b *base) PowerConsumption() float64 {
	if !b.On() {
		return 0
	}
	return b.NominalPowerConsumption()
}

func (b *base) PowerGeneration() float64 { return 0 }

// AddDamage records a fault, most severe first.
func (b *base) AddDamage(d Damage) {
	b.damage = append(b.damage, d)
	sortDamage(b.damage)
}

// efficiency is the share of output left after damage.
func (b *base) efficiency() float64 {
	e := 1.0
	for _, d := range b.damage {
		if d.Impairs == ImpairOutput {
			e *= 1 - d.Severity
		}
	}
	return e
}

// drawFactor scales power draw for damage.
func (b *base) drawFactor() float64 {
	f := 1.0
	for _, d := range b.damage {
		if d.Impairs == ImpairDraw {
			f += d.Severity
		}
	}
	return f
}

// disabledBy returns the fault keeping the subsystem off, if any.
func (b *base) disabledBy() (Damage, bool) {
	for _, d := range b.damage {
		if d.Impairs == ImpairDisable {
			return d, true
		}
	}
	return Damage{}, false
}

// tick runs the shared part of a subsystem update: effects, forced stop on
// disabling damage, and every action.
func (b *base) tick(ctx *Context) {
	b.effects.Update(ctx.DeltaMs)
	if d, ok := b.disabledBy(); ok && b.On() {
		b.shutDown(ctx, d.Name)
	}
	env := ctx.env()
	for _, a := range b.actions {
		a.Update(env, ctx)
	}
}

// ShutDown forces the subsystem off and stops its running actions. Repairs
// keep going.
func (b *base) ShutDown(ctx *Context, reason string) { b.shutDown(ctx, reason) }

func (b *base) shutDown(ctx *Context, reason string) {
	if !b.On() {
		return
	}
	b.power.SetValue(false)
	for _, a := range b.actions {
		if a != b.repair && a.Engaged() {
			a.Cancel(ctx)
		}
	}
	ctx.Log.Add(ctx.Tick, b.name, "sub", "power", "shutdown", reason, b.NominalPowerConsumption())
}

// requirePower is the shared check for actions that need the unit on.
func (b *base) requirePower(r *action.Reasons) {
	if !b.On() {
		r.Addf("%s is off", b.name)
	}
}

func (b *base) view(self Subsystem, stats map[string]float64) View {
	actions := make([]action.View, 0, len(b.actions))
	for _, a := range b.actions {
		actions = append(actions, a.View())
	}
	return View{
		ID:          b.id,
		Name:        b.name,
		Kind:        b.kind.String(),
		Cell:        b.cell,
		Size:        b.size,
		On:          b.On(),
		Nominal:     self.NominalPowerConsumption(),
		Consumption: self.PowerConsumption(),
		Generation:  self.PowerGeneration(),
		Actions:     actions,
		Effects:     b.effects.Views(),
		Damage:      append([]Damage(nil), b.damage...),
		Stats:       stats,
	}
}

// powerBehavior is the on/off switch. Switching on needs the current
// balance to cover the nominal draw.
type powerBehavior struct {
	b    *base
	gate powerGate
}

func (p *powerBehavior) Check(ctx *Context, r *action.Reasons) {
	if p.b.On() {
		return
	}
	if d, ok := p.b.disabledBy(); ok {
		r.Addf("disabled by %s", d.Name)
	}
	need := p.b.NominalPowerConsumption()
	if sd, ok := p.gate.(startupDrawer); ok {
		need = sd.startupDraw()
	}
	if have := ctx.Sub.PowerBalance(); need > 0 && have < need {
		r.Addf("not enough power (need %.1f, have %.1f)", need, have)
	}
	if p.gate != nil {
		p.gate.gatePower(ctx, r)
	}
}

func (p *powerBehavior) Complete(ctx *Context) {
	state := "off"
	if p.b.On() {
		state = "on"
	}
	ctx.Log.Add(ctx.Tick, p.b.name, "sub", "power", "toggle", state, p.b.NominalPowerConsumption())
	if !p.b.On() {
		for _, a := range p.b.actions {
			if a != p.b.repair && a.Engaged() {
				a.Cancel(ctx)
			}
		}
	}
}

// repairBehavior clears the most severe fault.
type repairBehavior struct {
	b *base
}

func (rb *repairBehavior) Check(_ *Context, r *action.Reasons) {
	if len(rb.b.damage) == 0 {
		r.Add("nothing to repair")
	}
}

func (rb *repairBehavior) Complete(ctx *Context) {
	if len(rb.b.damage) == 0 {
		return
	}
	d := rb.b.damage[0]
	rb.b.damage = rb.b.damage[1:]
	ctx.Log.Add(ctx.Tick, rb.b.name, "sub", "action", "repair", d.Name, d.Severity)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
