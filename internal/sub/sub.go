package sub

import (
	"fmt"
	"math"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/effect"
	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/physics"
)

// Sub is the player's submarine.
type Sub struct {
	entity.Base
	hull     HullConfig
	loadout  Loadout
	operator *action.OperatorToken

	subsystems []Subsystem
	reactors   []*Reactor
	batteries  []*Battery
	steering   *Steering
	engines    []*Engine
	weapons    []*Weapon
	sonars     []*Sonar
	pumps      []*Pump
	storages   []*Storage

	patch *action.Action[*Context]

	health    float64
	flood     float64
	throttle  float64
	direction float64
	target    *entity.Fish

	pendingMove   *Move
	pendingTarget *int

	shutdowns int
	impacts   int
}

// Move is a request to place a subsystem on another grid cell.
type Move struct {
	Subsystem int
	Cell      Cell
}

var _ action.Storage = (*Sub)(nil)

// New builds a submarine from a hull and loadout.
func New(id int, pos geom.Point, orientation float64, hull HullConfig, l Loadout) (*Sub, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	vol := physics.Volume{Length: hull.Length, Beam: hull.Beam, Mass: hull.Mass, Drag: hull.Drag}
	s := &Sub{
		Base:     entity.NewBase(id, entity.KindSub, "sub", physics.NewBody(pos, orientation, vol)),
		hull:     hull,
		loadout:  l,
		operator: action.NewOperator("crew"),
		health:   hull.Health,
	}
	ids := entity.NewIDAllocator(1)
	op, rep := s.operator, l.RepairMs
	for _, c := range l.Reactors {
		r := newReactor(ids.Next(), c, op, rep)
		s.reactors = append(s.reactors, r)
		s.subsystems = append(s.subsystems, r)
	}
	for _, c := range l.Batteries {
		b := newBattery(ids.Next(), c, op, rep)
		s.batteries = append(s.batteries, b)
		s.subsystems = append(s.subsystems, b)
	}
	for _, c := range l.Steering {
		s.steering = newSteering(ids.Next(), c, op, rep)
		s.subsystems = append(s.subsystems, s.steering)
	}
	for _, c := range l.Engines {
		e := newEngine(ids.Next(), c, op, rep)
		s.engines = append(s.engines, e)
		s.subsystems = append(s.subsystems, e)
	}
	for _, c := range l.Weapons {
		w := newWeapon(ids.Next(), c, op, rep)
		s.weapons = append(s.weapons, w)
		s.subsystems = append(s.subsystems, w)
	}
	for _, c := range l.Sonars {
		sn := newSonar(ids.Next(), c, op, rep)
		s.sonars = append(s.sonars, sn)
		s.subsystems = append(s.subsystems, sn)
	}
	for _, c := range l.Pumps {
		p := newPump(ids.Next(), c, op, rep)
		s.pumps = append(s.pumps, p)
		s.subsystems = append(s.subsystems, p)
	}
	for _, c := range l.Storages {
		st := newStorage(ids.Next(), c, op, rep)
		s.storages = append(s.storages, st)
		s.subsystems = append(s.subsystems, st)
	}
	for i, a := range s.subsystems {
		for _, b := range s.subsystems[:i] {
			if cellsOverlap(a.Cell(), a.Size(), b.Cell(), b.Size()) {
				return nil, fmt.Errorf("%w: %s overlaps %s on the grid", ErrInvalidLoadout, a.Name(), b.Name())
			}
		}
		if !s.fitsGrid(a.Cell(), a.Size()) {
			return nil, fmt.Errorf("%w: %s lies outside the %dx%d grid", ErrInvalidLoadout, a.Name(), l.GridWidth, l.GridHeight)
		}
	}
	s.patch = action.New[*Context](action.Options{
		ID:       "hull.patch",
		Name:     "patch",
		Kind:     action.Operator,
		Duration: hull.PatchMs,
		Costs:    []action.Cost{{Material: SpareParts, Count: 1}},
		Operator: op,
	}, patchBehavior{s})
	return s, nil
}

func (s *Sub) Hull() HullConfig                { return s.hull }
func (s *Sub) Operator() *action.OperatorToken { return s.operator }
func (s *Sub) Subsystems() []Subsystem         { return s.subsystems }
func (s *Sub) Reactors() []*Reactor            { return s.reactors }
func (s *Sub) Batteries() []*Battery           { return s.batteries }
func (s *Sub) Steering() *Steering             { return s.steering }
func (s *Sub) Engines() []*Engine              { return s.engines }
func (s *Sub) Weapons() []*Weapon              { return s.weapons }
func (s *Sub) Sonars() []*Sonar                { return s.sonars }
func (s *Sub) Pumps() []*Pump                  { return s.pumps }
func (s *Sub) Storages() []*Storage            { return s.storages }
func (s *Sub) Patch() *action.Action[*Context] { return s.patch }
func (s *Sub) Health() float64                 { return s.health }
func (s *Sub) Flood() float64                  { return s.flood }
func (s *Sub) Throttle() float64               { return s.throttle }
func (s *Sub) Direction() float64              { return s.direction }
func (s *Sub) Target() *entity.Fish            { return s.target }
func (s *Sub) Destroyed() bool                 { return s.health <= 0 }
func (s *Sub) Shutdowns() int                  { return s.shutdowns }
func (s *Sub) Impacts() int                    { return s.impacts }

// Grid is the equipment grid size in cells.
func (s *Sub) Grid() Cell { return Cell{s.loadout.GridWidth, s.loadout.GridHeight} }

// Leaks is the number of open hull leaks.
func (s *Sub) Leaks() int { return s.Effects().Count(effect.Leak) }

func (s *Sub) setHelm(throttle, direction float64) {
	s.throttle = throttle
	s.direction = direction
}

func (s *Sub) drain(v float64) { s.flood = math.Max(0, s.flood-v) }

// Subsystem returns the subsystem with id.
func (s *Sub) Subsystem(id int) (Subsystem, bool) {
	for _, ss := range s.subsystems {
		if ss.ID() == id {
			return ss, true
		}
	}
	return nil, false
}

// Action returns the action with the given id, e.g. "weapon.shoot".
func (s *Sub) Action(id string) (*action.Action[*Context], bool) {
	if s.patch.ID() == id {
		return s.patch, true
	}
	for _, ss := range s.subsystems {
		for _, a := range ss.Actions() {
			if a.ID() == id {
				return a, true
			}
		}
	}
	return nil, false
}

// Request activates an action by id. It returns false for unknown or
// disabled actions.
func (s *Sub) Request(ctx *Context, id string) bool {
	a, ok := s.Action(id)
	if !ok {
		return false
	}
	ctx.Sub = s
	if !a.Request(ctx.env(), ctx) {
		ctx.Log.Add(ctx.Tick, "sub", "sub", "action", "blocked", id, float64(len(a.Reasons())))
		return false
	}
	ctx.Log.Add(ctx.Tick, "sub", "sub", "action", "request", id, 0)
	return true
}

// Cancel cancels an engaged action by id.
func (s *Sub) Cancel(ctx *Context, id string) bool {
	a, ok := s.Action(id)
	if !ok || !a.Engaged() {
		return false
	}
	a.Cancel(ctx)
	ctx.Log.Add(ctx.Tick, "sub", "sub", "action", "cancel", id, 0)
	return true
}

// RequestMove queues a grid move applied on the next update.
func (s *Sub) RequestMove(m Move) { s.pendingMove = &m }

// RequestTarget queues a target selection applied on the next update. An id
// of zero or less clears the target.
func (s *Sub) RequestTarget(id int) { s.pendingTarget = &id }

// Count sums material across every hold.
func (s *Sub) Count(material string) int {
	n := 0
	for _, st := range s.storages {
		n += st.Count(material)
	}
	return n
}

// Take removes n of material across the holds in order. Nothing is taken
// when the combined stock is short.
func (s *Sub) Take(material string, n int) bool {
	if n < 0 || s.Count(material) < n {
		return false
	}
	for _, st := range s.storages {
		k := st.Count(material)
		if k > n {
			k = n
		}
		st.Take(material, k)
		n -= k
		if n == 0 {
			break
		}
	}
	return true
}

// Inventory merges the holds' stock in first-seen order.
func (s *Sub) Inventory() []Item {
	var out []Item
	index := make(map[string]int)
	for _, st := range s.storages {
		for _, it := range st.Inventory() {
			if i, ok := index[it.Material]; ok {
				out[i].Count += it.Count
				continue
			}
			index[it.Material] = len(out)
			out = append(out, it)
		}
	}
	return out
}

// PowerGeneration is the total output of every source.
func (s *Sub) PowerGeneration() float64 {
	g := 0.0
	for _, ss := range s.subsystems {
		g += ss.PowerGeneration()
	}
	return g
}

// PowerConsumption is the total current draw.
func (s *Sub) PowerConsumption() float64 {
	c := 0.0
	for _, ss := range s.subsystems {
		c += ss.PowerConsumption()
	}
	return c
}

// PowerBalance is generation minus consumption.
func (s *Sub) PowerBalance() float64 { return s.PowerGeneration() - s.PowerConsumption() }

// Update runs one tick: pending grid move, target selection, subsystem
// ticks, reactor heat, emergency shutdown and hull integration. Impacts can
// damage subsystems, so the balance is enforced again afterwards. It returns
// the wall collisions of the hull.
func (s *Sub) Update(ctx *Context) []physics.Collision {
	ctx.Sub = s
	if s.Destroyed() {
		return nil
	}
	s.Effects().Update(ctx.DeltaMs)
	s.applyMove(ctx)
	s.applyTarget(ctx)

	s.patch.Update(ctx.env(), ctx)
	for _, ss := range s.subsystems {
		ss.Update(ctx)
	}
	for _, r := range s.reactors {
		r.updateHeat(ctx)
	}
	s.EnforcePower(ctx)
	cols := s.integrate(ctx)
	s.EnforcePower(ctx)
	return cols
}

// EnforcePower switches off the hungriest subsystem until the balance is
// non-negative. Ties go to the earlier subsystem. Callers that damage the
// sub outside Update run it again before the tick ends.
func (s *Sub) EnforcePower(ctx *Context) {
	ctx.Sub = s
	for {
		balance := s.PowerBalance()
		if balance >= 0 {
			return
		}
		var worst Subsystem
		draw := 0.0
		for _, ss := range s.subsystems {
			if c := ss.PowerConsumption(); ss.On() && c > draw {
				worst, draw = ss, c
			}
		}
		if worst == nil {
			return
		}
		worst.ShutDown(ctx, fmt.Sprintf("emergency: balance %.1f", balance))
		s.shutdowns++
	}
}

func (s *Sub) integrate(ctx *Context) []physics.Collision {
	thrust, torque := 0.0, 0.0
	for _, e := range s.engines {
		thrust += e.Thrust()
		torque += e.Torque()
	}
	thrust *= s.floodPenalty()
	b := s.Body()
	b.ApplyThrust(thrust)
	b.ApplyTorque(torque * s.direction)
	cols := b.Step(ctx.DeltaMs, ctx.Map)

	if len(cols) > 0 {
		strongest := cols[0]
		for _, c := range cols[1:] {
			if c.ImpactForce > strongest.ImpactForce {
				strongest = c
			}
		}
		s.impact(ctx, strongest)
	}
	if rate := s.Effects().Sum(effect.Leak); rate > 0 {
		s.flood = math.Min(s.hull.FloodCapacity, s.flood+rate*ctx.DeltaMs/1000)
	}
	return cols
}

// floodPenalty halves thrust at full flooding.
func (s *Sub) floodPenalty() float64 {
	if s.hull.FloodCapacity <= 0 {
		return 1
	}
	return 1 - 0.5*math.Min(1, s.flood/s.hull.FloodCapacity)
}

func (s *Sub) impact(ctx *Context, c physics.Collision) {
	s.impacts++
	ctx.Log.AddVerbose(ctx.Tick, "sub", "sub", "collision", "wall",
		fmt.Sprintf("obstacle %d", c.ObstacleID), c.ImpactForce)
	if c.ImpactForce <= s.hull.ImpactThreshold {
		return
	}
	s.damageHull(ctx, (c.ImpactForce-s.hull.ImpactThreshold)*s.hull.ImpactDamageScale, "impact")
}

// TakeAttack applies a fish attack to the hull.
func (s *Sub) TakeAttack(ctx *Context, a entity.Attack) {
	if s.Destroyed() {
		return
	}
	ctx.Log.Add(ctx.Tick, a.Label, "fish", "attack", "hit", "sub", a.Damage)
	s.damageHull(ctx, a.Damage, a.Label)
}

func (s *Sub) damageHull(ctx *Context, dmg float64, source string) {
	s.health = math.Max(0, s.health-dmg)
	s.Effects().Refresh(effect.Timed(effect.Damage, 500, dmg, source))
	ctx.Log.Addf(ctx.Tick, "sub", "sub", "damage", "hull", dmg, "%.1f from %s (%.1f left)", dmg, source, s.health)

	if ctx.Rng.Float64() < s.hull.LeakChance {
		s.Effects().Add(effect.Lasting(effect.Leak, s.hull.LeakRate, source))
		ctx.Log.Add(ctx.Tick, "sub", "sub", "damage", "leak", source, s.hull.LeakRate)
	}
	if ctx.Rng.Float64() < s.hull.SubsystemDamageChance {
		s.damageSubsystem(ctx, source)
	}
	if s.Destroyed() {
		ctx.Log.Add(ctx.Tick, "sub", "sub", "damage", "destroyed", source, 0)
	}
}

// damageSubsystem rolls a fault on a random subsystem from its family table.
func (s *Sub) damageSubsystem(ctx *Context, source string) {
	if len(s.subsystems) == 0 {
		return
	}
	ss := s.subsystems[ctx.Rng.Intn(len(s.subsystems))]
	row, ok := s.loadout.Damage[ss.Kind()].Roll(ctx.Rng)
	if !ok {
		return
	}
	ss.AddDamage(Damage{Name: row.Name, Impairs: row.Impairs, Severity: row.Severity, Source: source})
	ctx.Log.Add(ctx.Tick, ss.Name(), "sub", "damage", "subsystem", row.Name, row.Severity)
}

func (s *Sub) applyMove(ctx *Context) {
	m := s.pendingMove
	s.pendingMove = nil
	if m == nil {
		return
	}
	ss, ok := s.Subsystem(m.Subsystem)
	if !ok {
		ctx.Log.Addf(ctx.Tick, "sub", "sub", "grid", "rejected", 0, "unknown subsystem %d", m.Subsystem)
		return
	}
	if !s.fitsGrid(m.Cell, ss.Size()) {
		ctx.Log.Addf(ctx.Tick, ss.Name(), "sub", "grid", "rejected", 0, "(%d,%d) is off the grid", m.Cell.X, m.Cell.Y)
		return
	}
	for _, o := range s.subsystems {
		if o != ss && cellsOverlap(m.Cell, ss.Size(), o.Cell(), o.Size()) {
			ctx.Log.Addf(ctx.Tick, ss.Name(), "sub", "grid", "rejected", 0, "(%d,%d) is taken by %s", m.Cell.X, m.Cell.Y, o.Name())
			return
		}
	}
	ss.setCell(m.Cell)
	ctx.Log.Addf(ctx.Tick, ss.Name(), "sub", "grid", "move", 0, "(%d,%d)", m.Cell.X, m.Cell.Y)
}

func (s *Sub) fitsGrid(c, size Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X+size.X <= s.loadout.GridWidth && c.Y+size.Y <= s.loadout.GridHeight
}

func cellsOverlap(a, as, b, bs Cell) bool {
	return a.X < b.X+bs.X && b.X < a.X+as.X && a.Y < b.Y+bs.Y && b.Y < a.Y+as.Y
}

func (s *Sub) applyTarget(ctx *Context) {
	if req := s.pendingTarget; req != nil {
		s.pendingTarget = nil
		switch m, ok := ctx.Map.Entity(*req); {
		case *req <= 0:
			s.target = nil
			ctx.Log.Add(ctx.Tick, "sub", "sub", "target", "clear", "", 0)
		case !ok:
			ctx.Log.Addf(ctx.Tick, "sub", "sub", "target", "rejected", 0, "unknown entity %d", *req)
		default:
			f, isFish := m.(*entity.Fish)
			if !isFish || !f.Alive() {
				ctx.Log.Addf(ctx.Tick, "sub", "sub", "target", "rejected", 0, "entity %d cannot be targeted", *req)
				break
			}
			s.target = f
			ctx.Log.Add(ctx.Tick, "sub", "sub", "target", "select", f.Label(), float64(f.ID()))
		}
	}
	if s.target != nil && !s.target.Alive() {
		ctx.Log.Add(ctx.Tick, "sub", "sub", "target", "lost", s.target.Label(), 0)
		s.target = nil
	}
}

// patchBehavior seals the oldest hull leak.
type patchBehavior struct{ s *Sub }

func (p patchBehavior) Check(_ *Context, r *action.Reasons) {
	if p.s.Leaks() == 0 {
		r.Add("no leaks")
	}
}

func (p patchBehavior) Complete(ctx *Context) {
	if e, ok := p.s.Effects().RemoveOne(effect.Leak); ok {
		ctx.Log.Add(ctx.Tick, "sub", "sub", "action", "patch", e.Source, e.Magnitude)
	}
}

// ViewState is the plain snapshot of the submarine.
type ViewState struct {
	ID            int           `json:"id"`
	X             float64       `json:"x"`
	Y             float64       `json:"y"`
	Orientation   float64       `json:"orientation"`
	Speed         float64       `json:"speed"`
	Length        float64       `json:"length"`
	Beam          float64       `json:"beam"`
	Health        float64       `json:"health"`
	MaxHealth     float64       `json:"maxHealth"`
	Flood         float64       `json:"flood"`
	FloodCapacity float64       `json:"floodCapacity"`
	Leaks         int           `json:"leaks"`
	Throttle      float64       `json:"throttle"`
	Direction     float64       `json:"direction"`
	Generation    float64       `json:"generation"`
	Consumption   float64       `json:"consumption"`
	Balance       float64       `json:"balance"`
	Target        int           `json:"target"`
	OperatorTask  string        `json:"operatorTask,omitempty"`
	Grid          Cell          `json:"grid"`
	Actions       []action.View `json:"actions"`
	Effects       []effect.View `json:"effects,omitempty"`
	Subsystems    []View        `json:"subsystems"`
	Contacts      []Contact     `json:"contacts,omitempty"`
	Echoes        []Echo        `json:"echoes,omitempty"`
	Inventory     []Item        `json:"inventory,omitempty"`
	Destroyed     bool          `json:"destroyed"`
}

// ToViewState returns the plain snapshot of s.
func (s *Sub) ToViewState() ViewState {
	p := s.Position()
	b := s.Body()
	v := ViewState{
		ID:            s.ID(),
		X:             p.X,
		Y:             p.Y,
		Orientation:   b.Orientation(),
		Speed:         b.Speed(),
		Length:        s.hull.Length,
		Beam:          s.hull.Beam,
		Health:        s.health,
		MaxHealth:     s.hull.Health,
		Flood:         s.flood,
		FloodCapacity: s.hull.FloodCapacity,
		Leaks:         s.Leaks(),
		Throttle:      s.throttle,
		Direction:     s.direction,
		Generation:    s.PowerGeneration(),
		Consumption:   s.PowerConsumption(),
		Balance:       s.PowerBalance(),
		OperatorTask:  s.operator.Task(),
		Grid:          s.Grid(),
		Actions:       []action.View{s.patch.View()},
		Effects:       s.Effects().Views(),
		Inventory:     s.Inventory(),
		Destroyed:     s.Destroyed(),
	}
	if s.target != nil {
		v.Target = s.target.ID()
	}
	for _, ss := range s.subsystems {
		v.Subsystems = append(v.Subsystems, ss.View())
	}
	for _, sn := range s.sonars {
		v.Contacts = append(v.Contacts, sn.Contacts()...)
		v.Contacts = append(v.Contacts, sn.Pinged()...)
		v.Echoes = append(v.Echoes, sn.Echoes()...)
	}
	return v
}
