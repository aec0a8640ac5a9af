package sub

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Garsondee/Sub-Sense/internal/effect"
	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/simlog"
	"github.com/Garsondee/Sub-Sense/internal/world"
)

type controls struct {
	values map[string]float64
	held   map[string]bool
}

func newControls() *controls {
	return &controls{values: make(map[string]float64), held: make(map[string]bool)}
}

func (c *controls) Value(key string, def float64) float64 {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

func (c *controls) SetValue(key string, v float64) { c.values[key] = v }
func (c *controls) Held(key string) bool           { return c.held[key] }

func rect(minX, minY, maxX, maxY float64) geom.Polygon {
	return geom.NewPolygon(geom.Pt(minX, minY), geom.Pt(maxX, minY), geom.Pt(maxX, maxY), geom.Pt(minX, maxY))
}

type harness struct {
	sub *Sub
	ctx *Context
	ctl *controls
	log *simlog.Log
	m   *world.Map
}

// newHarness puts a default sub at (1000,1000) in an open 2000x2000 cave.
func newHarness(t *testing.T, l Loadout) *harness {
	t.Helper()
	return newHullHarness(t, DefaultHull(), l)
}

func newHullHarness(t *testing.T, hull HullConfig, l Loadout) *harness {
	t.Helper()
	m := world.New(geom.Rect{MaxX: 2000, MaxY: 2000})
	m.AddRegion(world.Region{Kind: world.Cave, Shape: rect(0, 0, 2000, 2000), Center: geom.Pt(1000, 1000)})
	s, err := New(1, geom.Pt(1000, 1000), 0, hull, l)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.AddEntity(s)
	ctl := newControls()
	log := simlog.New(false)
	ctx := &Context{
		Map:      m,
		Rng:      rand.New(rand.NewSource(7)), // #nosec G404 -- game only
		Log:      log,
		Controls: ctl,
		DeltaMs:  33,
	}
	ctx.Sub = s
	return &harness{sub: s, ctx: ctx, ctl: ctl, log: log, m: m}
}

func (h *harness) step(n int) {
	for i := 0; i < n; i++ {
		h.ctx.Tick++
		h.ctx.Now += h.ctx.DeltaMs
		h.sub.Update(h.ctx)
		h.m.UpdateEntity(h.sub)
	}
}

func TestNew_RejectsBadLoadouts(t *testing.T) {
	l := DefaultLoadout()
	l.Engines = nil
	if _, err := New(1, geom.Pt(0, 0), 0, DefaultHull(), l); !errors.Is(err, ErrInvalidLoadout) {
		t.Fatalf("expected ErrInvalidLoadout without engines, got %v", err)
	}
	l = DefaultLoadout()
	l.Pumps[0].Cell = Cell{0, 0}
	if _, err := New(1, geom.Pt(0, 0), 0, DefaultHull(), l); !errors.Is(err, ErrInvalidLoadout) {
		t.Fatalf("expected ErrInvalidLoadout for overlapping cells, got %v", err)
	}
	l = DefaultLoadout()
	l.Pumps[0].Cell = Cell{9, 0}
	if _, err := New(1, geom.Pt(0, 0), 0, DefaultHull(), l); !errors.Is(err, ErrInvalidLoadout) {
		t.Fatalf("expected ErrInvalidLoadout for an off-grid cell, got %v", err)
	}
}

func TestSub_PowerBalanceNeverNegativeAfterTick(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.ctl.values[ReactorControlKey] = 0.3
	h.ctl.values[SteeringThrottleKey] = 1

	for i := 0; i < 200; i++ {
		h.step(1)
		s := h.sub
		if d := s.PowerBalance() - (s.PowerGeneration() - s.PowerConsumption()); d != 0 {
			t.Fatalf("tick %d: balance does not match generation minus consumption", i)
		}
		if s.PowerBalance() >= 0 {
			continue
		}
		for _, ss := range s.Subsystems() {
			if ss.On() && ss.PowerConsumption() > 0 {
				t.Fatalf("tick %d: balance %.2f with %s still drawing %.2f",
					i, s.PowerBalance(), ss.Name(), ss.PowerConsumption())
			}
		}
	}
	if h.sub.Shutdowns() == 0 {
		t.Fatal("running full throttle on a throttled reactor should force shutdowns")
	}
	first := h.log.Filter("power", "shutdown")[0]
	if first.Subject != "engine-1" {
		t.Fatalf("the hungriest subsystem should go first, ties to the earlier one; got %s\n%s",
			first.Subject, h.log.Format())
	}
}

func TestSub_BitesThatRaiseDrawStillEndTickBalanced(t *testing.T) {
	hull := DefaultHull()
	hull.Health = 1e6
	hull.LeakChance = 0
	hull.SubsystemDamageChance = 1
	l := DefaultLoadout()
	l.Damage = map[Kind]DamageTable{}
	for k := KindReactor; k <= KindStorage; k++ {
		l.Damage[k] = DamageTable{{Name: "short", Impairs: ImpairDraw, Severity: 2, Weight: 1}}
	}
	h := newHullHarness(t, hull, l)
	s := h.sub

	for i := 0; i < 60; i++ {
		h.step(1)
		s.TakeAttack(h.ctx, entity.Attack{From: 9, Label: "F9", Damage: 1})
		s.EnforcePower(h.ctx)
		if s.PowerBalance() >= 0 {
			continue
		}
		for _, ss := range s.Subsystems() {
			if ss.On() && ss.PowerConsumption() > 0 {
				t.Fatalf("tick %d: balance %.2f after bites with %s still drawing %.2f",
					i, s.PowerBalance(), ss.Name(), ss.PowerConsumption())
			}
		}
	}
	if h.log.CountCategory("damage", "subsystem") != 60 {
		t.Fatalf("every bite should damage a subsystem, got %d", h.log.CountCategory("damage", "subsystem"))
	}
	if s.Shutdowns() == 0 {
		t.Fatal("stacked draw faults should force shutdowns")
	}
}

func TestSub_PowerOnNeedsHeadroom(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	s := h.sub
	w := s.Weapons()[0]
	h.ctl.values[ReactorControlKey] = 0.05
	if !s.Request(h.ctx, "weapon.power") || w.On() {
		t.Fatal("switching off should always be allowed")
	}
	h.step(150)
	if s.PowerBalance() >= w.NominalPowerConsumption() {
		t.Fatalf("test setup: balance %.1f should not cover the weapon", s.PowerBalance())
	}
	if s.Request(h.ctx, "weapon.power") {
		t.Fatal("weapon should not switch on without headroom")
	}
	if len(w.Power().Reasons()) == 0 {
		t.Fatal("blocked power toggle should explain why")
	}
	if w.On() {
		t.Fatal("weapon should still be off")
	}
}

func TestSub_GridMove(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	e := h.sub.Engines()[0]
	start := e.Cell()

	h.sub.RequestMove(Move{Subsystem: e.ID(), Cell: Cell{0, 0}})
	h.step(1)
	if e.Cell() != start || !h.log.HasEntry("grid", "rejected", "reactor") {
		t.Fatalf("move onto the reactor should be rejected, cell %+v", e.Cell())
	}

	h.sub.RequestMove(Move{Subsystem: e.ID(), Cell: Cell{4, 0}})
	h.step(1)
	if e.Cell() != (Cell{4, 0}) {
		t.Fatalf("move to a free cell should apply, cell %+v", e.Cell())
	}

	h.sub.RequestMove(Move{Subsystem: 999, Cell: Cell{2, 2}})
	h.step(1)
	if !h.log.HasEntry("grid", "rejected", "unknown subsystem") {
		t.Fatal("unknown subsystem move should be rejected")
	}
}

func TestSub_TargetSelection(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	sp := entity.DefaultSpecies()[1]
	f := entity.NewFish(42, sp, geom.Pt(1200, 1000), 0)
	h.m.AddEntity(f)

	h.sub.RequestTarget(42)
	h.step(1)
	if h.sub.Target() != f {
		t.Fatal("fish should be targeted")
	}
	h.sub.RequestTarget(h.sub.ID())
	h.step(1)
	if h.sub.Target() != f || !h.log.HasEntry("target", "rejected", "") {
		t.Fatal("the sub cannot target itself")
	}
	f.Hit(sp.Health, "test")
	h.step(1)
	if h.sub.Target() != nil {
		t.Fatal("dead target should be dropped")
	}
}

func TestSub_AttackDamagesHull(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.sub.TakeAttack(h.ctx, entity.Attack{From: 5, Label: "F5", Damage: 10})
	if h.sub.Health() != DefaultHull().Health-10 {
		t.Fatalf("expected health %.0f, got %.1f", DefaultHull().Health-10, h.sub.Health())
	}
	if !h.sub.Effects().Has(effect.Damage) {
		t.Fatal("attack should flash the damage effect")
	}
	if !h.log.HasEntry("attack", "hit", "sub") {
		t.Fatal("attack should be logged")
	}
}

func TestSub_DestroyedStopsUpdating(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.sub.TakeAttack(h.ctx, entity.Attack{Label: "F1", Damage: 1000})
	if !h.sub.Destroyed() || h.sub.Health() != 0 {
		t.Fatal("sub should be destroyed")
	}
	h.ctl.values[SteeringThrottleKey] = 1
	before := h.sub.Position()
	h.step(10)
	if h.sub.Position() != before {
		t.Fatal("destroyed sub should not move")
	}
}

func TestSub_LeakFloodsAndPatchSeals(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	s := h.sub
	s.Effects().Add(effect.Lasting(effect.Leak, 1.5, "test"))
	if !s.Request(h.ctx, "hull.patch") {
		t.Fatalf("patch should start: %v", s.Patch().Reasons())
	}
	h.step(10)
	if s.Flood() <= 0 {
		t.Fatal("open leak should let water in")
	}
	if s.Pumps()[0].Drained() <= 0 {
		t.Fatal("pump should drain flood water")
	}

	// Claiming the operator for a repair evicts the patch.
	e := s.Engines()[0]
	e.AddDamage(Damage{Name: "bent propeller", Impairs: ImpairOutput, Severity: 0.4})
	if !s.Request(h.ctx, "engine-1.repair") {
		t.Fatalf("repair should start: %v", s.Engines()[0].Actions()[1].Reasons())
	}
	h.step(1)
	if s.Patch().Engaged() || s.Patch().Cancellations() != 1 {
		t.Fatal("patch should be cancelled when the operator is taken")
	}
	h.step(160)
	if len(e.Damage()) != 0 {
		t.Fatal("repair should clear the damage")
	}
	if got := s.Count(SpareParts); got != 2 {
		t.Fatalf("only the finished repair should be paid for, spare parts %d", got)
	}

	if !s.Request(h.ctx, "hull.patch") {
		t.Fatal("patch should start again")
	}
	h.step(130)
	if s.Leaks() != 0 || s.Count(SpareParts) != 1 {
		t.Fatalf("patch should seal the leak and pay one part, leaks %d parts %d", s.Leaks(), s.Count(SpareParts))
	}
}

func TestSub_UnknownActionRequest(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	if h.sub.Request(h.ctx, "nope.nothing") {
		t.Fatal("unknown action should not be requested")
	}
	if h.sub.Cancel(h.ctx, "weapon.aim") {
		t.Fatal("idle action cannot be cancelled")
	}
}

func TestSub_StorageAcrossHolds(t *testing.T) {
	l := DefaultLoadout()
	second := l.Storages[0]
	second.Name = "storage-2"
	second.Cell = Cell{2, 2}
	second.Size = Cell{1, 1}
	second.Inventory = map[string]int{SpareParts: 2}
	l.Storages = append(l.Storages, second)
	h := newHarness(t, l)
	s := h.sub
	if s.Count(SpareParts) != 5 {
		t.Fatalf("expected 5 parts across holds, got %d", s.Count(SpareParts))
	}
	if !s.Take(SpareParts, 4) || s.Count(SpareParts) != 1 {
		t.Fatal("take should span holds")
	}
	if s.Take(SpareParts, 2) || s.Count(SpareParts) != 1 {
		t.Fatal("short take should take nothing")
	}
}

func TestSub_ViewState(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.step(1)
	v := h.sub.ToViewState()
	if len(v.Subsystems) != len(h.sub.Subsystems()) {
		t.Fatalf("expected %d subsystem views, got %d", len(h.sub.Subsystems()), len(v.Subsystems))
	}
	if v.Balance != v.Generation-v.Consumption {
		t.Fatal("view balance should be generation minus consumption")
	}
	if v.Subsystems[0].Kind != "reactor" || len(v.Subsystems[0].Actions) != 4 {
		t.Fatalf("unexpected reactor view %+v", v.Subsystems[0])
	}
	if len(v.Actions) != 1 || v.Actions[0].ID != "hull.patch" {
		t.Fatal("hull actions should be listed")
	}
}
