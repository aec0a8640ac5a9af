package sub

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/geom"
)

func hasReason(reasons []string, substr string) bool {
	for _, r := range reasons {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

func TestEngine_OffDrawsNothing(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.ctl.values[SteeringThrottleKey] = 1
	h.step(1)
	e := h.sub.Engines()[0]
	if e.PowerConsumption() != e.NominalPowerConsumption() {
		t.Fatalf("full throttle should draw nominal, got %.1f", e.PowerConsumption())
	}
	if !h.sub.Request(h.ctx, "engine-1.power") {
		t.Fatal("engine should switch off")
	}
	h.step(3)
	if e.Throttle() != 1 {
		t.Fatalf("engine should still see the throttle, got %.2f", e.Throttle())
	}
	if e.PowerConsumption() != 0 || e.Thrust() != 0 {
		t.Fatalf("engine that is off should draw and push nothing, draw %.1f thrust %.1f",
			e.PowerConsumption(), e.Thrust())
	}
}

func TestEngine_DrawFollowsThrottle(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.ctl.values[SteeringThrottleKey] = -0.5
	h.step(1)
	e := h.sub.Engines()[0]
	if math.Abs(e.PowerConsumption()-0.5*e.NominalPowerConsumption()) > 1e-9 {
		t.Fatalf("draw should follow |throttle|, got %.2f", e.PowerConsumption())
	}
	if e.Thrust() >= 0 {
		t.Fatal("reverse throttle should push backwards")
	}
}

func TestEngine_DamageReducesThrust(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.ctl.values[SteeringThrottleKey] = 1
	h.step(1)
	e := h.sub.Engines()[0]
	full := e.Thrust()
	e.AddDamage(Damage{Name: "bent propeller", Impairs: ImpairOutput, Severity: 0.4})
	if math.Abs(e.Thrust()-0.6*full) > 1e-9 {
		t.Fatalf("damage should cut thrust to 60%%, got %.1f of %.1f", e.Thrust(), full)
	}
	e.AddDamage(Damage{Name: "seized shaft", Impairs: ImpairDisable, Severity: 1})
	h.step(1)
	if e.On() || !h.log.HasEntry("power", "shutdown", "seized shaft") {
		t.Fatal("disabling damage should switch the engine off")
	}
	if h.sub.Request(h.ctx, "engine-1.power") {
		t.Fatal("disabled engine should not switch back on")
	}
	if !hasReason(e.Power().Reasons(), "seized shaft") {
		t.Fatalf("expected the fault as a reason, got %v", e.Power().Reasons())
	}
}

func TestSteering_AutoCentering(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	st := h.sub.Steering()
	h.sub.Body().SetAngularVelocity(0.5)
	h.step(1)
	if !st.AutoCentering() || st.Direction() >= 0 {
		t.Fatalf("residual spin should be damped, direction %.2f", st.Direction())
	}
	h.step(100)
	if w := math.Abs(h.sub.Body().AngularVelocity()); w > 0.1 {
		t.Fatalf("spin should settle near the threshold, got %.3f rad/s", w)
	}
}

func TestSteering_HeldKeysOverrideAutoCentering(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	st := h.sub.Steering()
	h.sub.Body().SetAngularVelocity(0.5)
	h.ctl.held[SteerRightKey] = true
	h.step(1)
	if st.AutoCentering() || st.Direction() != 1 || !st.Right().Engaged() {
		t.Fatalf("held right should steer right, direction %.2f", st.Direction())
	}
	h.ctl.held[SteerRightKey] = false
	h.ctl.held[SteerLeftKey] = true
	h.step(1)
	if st.Right().Engaged() || !st.Left().Engaged() || st.Direction() != -1 {
		t.Fatal("left and right should be mutually exclusive")
	}
	h.ctl.held[SteerLeftKey] = false
	h.step(1)
	if st.Left().Engaged() {
		t.Fatal("releasing the key should release the hold")
	}
}

func TestWeapon_NoAmmoCannotShoot(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	w := h.sub.Weapons()[0]
	w.SetAmmo(0)
	if !h.sub.Request(h.ctx, "weapon.aim") {
		t.Fatal("aiming should not need ammo")
	}
	for i := 0; i < 100; i++ {
		h.step(1)
		if h.sub.Request(h.ctx, "weapon.shoot") {
			t.Fatalf("tick %d: shoot should be disabled with no ammo", i)
		}
		if !hasReason(w.Shoot().Reasons(), "no ammo") {
			t.Fatalf("tick %d: expected a no-ammo reason, got %v", i, w.Shoot().Reasons())
		}
	}
	if w.Aim().Engaged() {
		t.Fatal("aim should have run out")
	}
	if w.Shots() != 0 {
		t.Fatal("no shot should have been fired")
	}
}

func TestWeapon_ShootNeedsAim(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	w := h.sub.Weapons()[0]
	if h.sub.Request(h.ctx, "weapon.shoot") {
		t.Fatal("shoot should need an aim in progress")
	}
	if !hasReason(w.Shoot().Reasons(), "not aiming") {
		t.Fatalf("expected not-aiming reason, got %v", w.Shoot().Reasons())
	}
}

func TestWeapon_ShotResolvesByOverlap(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	w := h.sub.Weapons()[0]
	sp := entity.DefaultSpecies()[1]
	f := entity.NewFish(99, sp, geom.Pt(1100, 1000), 0)
	h.m.AddEntity(f)
	h.sub.RequestTarget(99)
	h.step(1)

	h.sub.Request(h.ctx, "weapon.aim")
	h.step(5)
	w.SetTargets([]Window{{Start: 0, End: 1}})
	if !h.sub.Request(h.ctx, "weapon.shoot") {
		t.Fatalf("shoot should be enabled: %v", w.Shoot().Reasons())
	}
	if w.Hits() != 1 || f.Health() != sp.Health-20 {
		t.Fatalf("overlapping shot should hit once for 20, hits %d health %.1f", w.Hits(), f.Health())
	}
	if w.Ammo() != 1 || w.Aim().Engaged() {
		t.Fatal("shot should use ammo and end the aim")
	}

	h.sub.Request(h.ctx, "weapon.aim")
	h.step(5)
	w.SetTargets([]Window{{Start: 0.9, End: 0.95}})
	h.sub.Request(h.ctx, "weapon.shoot")
	if w.Hits() != 1 || w.Shots() != 2 || f.Health() != sp.Health-20 {
		t.Fatal("shot off the target window should miss")
	}
	if !h.log.HasEntry("weapon", "miss", "off target") {
		t.Fatal("miss should be logged")
	}
}

func TestWeapon_ReloadPaysTorpedo(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	w := h.sub.Weapons()[0]
	if !h.sub.Request(h.ctx, "weapon.reload") {
		t.Fatalf("reload should start: %v", w.Reload().Reasons())
	}
	h.step(130)
	if w.Ammo() != 3 || h.sub.Count(Torpedo) != 3 {
		t.Fatalf("reload should move one torpedo into the tube, ammo %d stock %d", w.Ammo(), h.sub.Count(Torpedo))
	}
}

func TestReactor_RampIsAsymmetric(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	r := h.sub.Reactors()[0]
	start := r.Output()
	h.ctl.values[ReactorControlKey] = 0.3
	h.step(30)
	if want := start - 20*0.99; math.Abs(r.Output()-want) > 1e-6 {
		t.Fatalf("output should ramp down at 20/s, want %.2f got %.2f", want, r.Output())
	}
	down := r.Output()
	h.ctl.values[ReactorControlKey] = 1
	h.step(30)
	if want := down + 8*0.99; math.Abs(r.Output()-want) > 1e-6 {
		t.Fatalf("output should ramp up at 8/s, want %.2f got %.2f", want, r.Output())
	}
}

func TestReactor_FuelDepletionAndRefuel(t *testing.T) {
	l := DefaultLoadout()
	l.Reactors[0].FuelCapacity = 1
	h := newHarness(t, l)
	r := h.sub.Reactors()[0]
	h.step(60)
	if r.On() || r.Fuel() != 0 || !h.log.HasEntry("power", "shutdown", "fuel depleted") {
		t.Fatalf("empty reactor should shut down, on=%v fuel=%.2f", r.On(), r.Fuel())
	}
	if h.sub.Request(h.ctx, "reactor.power") || !hasReason(r.Power().Reasons(), "no fuel") {
		t.Fatal("reactor should not start without fuel")
	}

	if !h.sub.Request(h.ctx, "reactor.refuel") {
		t.Fatalf("refuel should start: %v", r.Refuel().Reasons())
	}
	if !h.sub.Operator().Busy() || !strings.HasSuffix(h.sub.Operator().Task(), "refuel") {
		t.Fatalf("operator should be refuelling, task %q", h.sub.Operator().Task())
	}
	h.step(190)
	if r.Fuel() != 1 || h.sub.Count(FuelRod) != 1 {
		t.Fatalf("refuel should load one rod, fuel %.1f rods %d", r.Fuel(), h.sub.Count(FuelRod))
	}
	if !h.sub.Request(h.ctx, "reactor.power") || !r.On() {
		t.Fatal("refuelled reactor should start")
	}
}

func TestReactor_ScramStopsOutput(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	r := h.sub.Reactors()[0]
	if !h.sub.Request(h.ctx, "reactor.scram") {
		t.Fatal("scram should be allowed while running")
	}
	if r.On() || r.Output() != 0 || r.Control() != 0 {
		t.Fatal("scram should stop the reactor and zero the control")
	}
	if h.ctl.values[ReactorControlKey] != 0 {
		t.Fatal("scram should reset the control value")
	}
	if h.sub.Request(h.ctx, "reactor.scram") {
		t.Fatal("scram needs a running reactor")
	}
}

func TestReactor_HeatUsesThisTicksDemand(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	s := h.sub
	r := s.Reactors()[0]
	h.ctl.values[SteeringThrottleKey] = 1
	h.step(1)

	demand := s.PowerConsumption()
	if demand < 70 {
		t.Fatalf("engines at full throttle should count this tick, demand %.1f", demand)
	}
	dt := h.ctx.DeltaMs / 1000
	want := 2.0/3.0*r.Output()*math.Min(1, r.cfg.CoolRate*dt) + (r.Output()-demand)*r.cfg.HeatRate*dt
	if math.Abs(r.Heat()-want) > 1e-9 {
		t.Fatalf("expected heat %.4f against demand %.1f, got %.4f", want, demand, r.Heat())
	}
}

func TestBattery_Discharge(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	b := h.sub.Batteries()[0]
	if b.ProvidesCharge() || b.NeedsCharging() {
		t.Fatal("full battery starts in charge mode")
	}
	if !h.sub.Request(h.ctx, "battery.discharge") {
		t.Fatal("discharge toggle should switch")
	}
	if !b.ProvidesCharge() || b.PowerGeneration() != 30 {
		t.Fatal("discharging battery should supply its rate")
	}
	h.step(30)
	if want := 600 - 30*0.99; math.Abs(b.Charge()-want) > 1e-6 {
		t.Fatalf("expected charge %.2f, got %.2f", want, b.Charge())
	}

	h.sub.Request(h.ctx, "battery.discharge")
	if !b.NeedsCharging() || b.PowerConsumption() != 15 {
		t.Fatalf("battery below capacity should charge, draw %.1f", b.PowerConsumption())
	}
	h.step(1)
	if want := 600 - 30*0.99 + 15*0.033; math.Abs(b.Charge()-want) > 1e-6 {
		t.Fatalf("expected charge %.3f, got %.3f", want, b.Charge())
	}
}

func TestBattery_SwitchesOnAsSourceWithReactorDown(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	s := h.sub
	b := s.Batteries()[0]
	h.ctl.values[ReactorControlKey] = 0
	h.step(150)
	if s.Reactors()[0].Output() != 0 {
		t.Fatalf("test setup: reactor output %.1f should have ramped to zero", s.Reactors()[0].Output())
	}

	if !s.Request(h.ctx, "battery.discharge") || !b.Discharging() {
		t.Fatal("discharge toggle should switch")
	}
	if !s.Request(h.ctx, "battery.power") || b.On() {
		t.Fatal("switching the battery off should always be allowed")
	}
	if !s.Request(h.ctx, "battery.power") {
		t.Fatalf("a discharging battery should switch on without headroom: %v", b.Power().Reasons())
	}
	if !b.On() || b.PowerGeneration() != 30 {
		t.Fatalf("battery should be supplying, on=%v gen=%.1f", b.On(), b.PowerGeneration())
	}

	s.Request(h.ctx, "battery.power")
	b.charge = 0
	if s.Request(h.ctx, "battery.power") || !hasReason(b.Power().Reasons(), "battery is empty") {
		t.Fatalf("an empty discharging battery should stay off: %v", b.Power().Reasons())
	}

	s.Request(h.ctx, "battery.discharge")
	if s.Request(h.ctx, "battery.power") || !hasReason(b.Power().Reasons(), "not enough power") {
		t.Fatalf("a charging battery still needs headroom: %v", b.Power().Reasons())
	}
}

func TestSonar_PassiveAndPing(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	h.m.AddObstacle(rect(1300, 0, 1400, 2000))
	f := entity.NewFish(77, entity.DefaultSpecies()[0], geom.Pt(1100, 1000), 0)
	h.m.AddEntity(f)
	sn := h.sub.Sonars()[0]

	h.step(1)
	cs := sn.Contacts()
	if len(cs) != 1 || cs[0].ID != 77 || cs[0].Label != "F77" {
		t.Fatalf("expected the fish as the only passive contact, got %+v", cs)
	}

	if !h.sub.Request(h.ctx, "sonar.ping") {
		t.Fatal("ping should start")
	}
	if sn.PowerConsumption() != 18 {
		t.Fatalf("charging ping should add its draw, got %.1f", sn.PowerConsumption())
	}
	h.step(50)
	if sn.Pings() != 1 || len(sn.Echoes()) == 0 {
		t.Fatalf("ping should return wall echoes, pings %d echoes %d", sn.Pings(), len(sn.Echoes()))
	}
	for _, e := range sn.Echoes() {
		if e.X < 1299 {
			t.Fatalf("echo off the only wall: %+v", e)
		}
	}
	if len(sn.Pinged()) != 1 {
		t.Fatal("ping should report active contacts")
	}
}

func TestStorage_CollectSample(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	p := entity.NewPlant(50, geom.Pt(1060, 1000), 20, 2)
	h.m.AddPlant(p)
	if !h.sub.Request(h.ctx, "storage.collect") {
		t.Fatalf("collect should start: %v", h.sub.Storages()[0].Collect().Reasons())
	}
	h.step(80)
	if h.sub.Count(Sample) != 1 || p.Samples() != 1 {
		t.Fatalf("expected one sample collected, have %d, plant %d", h.sub.Count(Sample), p.Samples())
	}
}

func TestStorage_CollectNeedsPlant(t *testing.T) {
	h := newHarness(t, DefaultLoadout())
	if h.sub.Request(h.ctx, "storage.collect") {
		t.Fatal("collect should need a plant in reach")
	}
	if !hasReason(h.sub.Storages()[0].Collect().Reasons(), "no plant") {
		t.Fatal("expected no-plant reason")
	}
}

func TestDamageTable_Roll(t *testing.T) {
	rng := rand.New(rand.NewSource(3)) // #nosec G404 -- game only
	table := DamageTable{{Name: "a", Weight: 1}, {Name: "b", Weight: 3}}
	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		d, ok := table.Roll(rng)
		if !ok {
			t.Fatal("non-empty table should roll")
		}
		counts[d.Name]++
	}
	if counts["b"] < 2*counts["a"] {
		t.Fatalf("weights should bias the roll, got %v", counts)
	}
	if _, ok := (DamageTable{}).Roll(rng); ok {
		t.Fatal("empty table should not roll")
	}
}
