package action

import "testing"

// recorder is the test context: a behavior that records every hook call.
type recorder struct {
	blocked     string
	activated   int
	deactivated int
	completed   int
	cancelled   int
}

func (p *recorder) Check(_ *recorder, r *Reasons) {
	if p.blocked != "" {
		r.Add(p.blocked)
	}
}
func (p *recorder) Complete(*recorder)   { p.completed++ }
func (p *recorder) Activate(*recorder)   { p.activated++ }
func (p *recorder) Deactivate(*recorder) { p.deactivated++ }
func (p *recorder) Cancel(*recorder)     { p.cancelled++ }

type stock map[string]int

func (s stock) Count(m string) int { return s[m] }
func (s stock) Take(m string, n int) bool {
	if s[m] < n {
		return false
	}
	s[m] -= n
	return true
}

func tick(ms float64) Env { return Env{DeltaMs: ms} }

func TestAction_ProgressMonotonicAndCompletesOnce(t *testing.T) {
	p := &recorder{}
	a := New[*recorder](Options{ID: "repair", Kind: Progress, Duration: 100}, p)
	if !a.Request(tick(0), p) {
		t.Fatal("enabled action should accept a request")
	}
	if a.State() != Progressing || a.Progress() != 0 {
		t.Fatalf("expected fresh progressing state, got %s at %.1f", a.State(), a.Progress())
	}
	prev := 0.0
	for i := 0; i < 3; i++ {
		a.Update(tick(30), p)
		if a.Progress() <= prev {
			t.Fatalf("progress should strictly increase: %.1f -> %.1f", prev, a.Progress())
		}
		prev = a.Progress()
	}
	if p.completed != 0 {
		t.Fatal("action completed before reaching its duration")
	}
	a.Update(tick(30), p)
	if p.completed != 1 {
		t.Fatalf("expected exactly one completion, got %d", p.completed)
	}
	if a.Engaged() || a.Progress() != 0 {
		t.Fatalf("completed action should be inactive with reset progress, got %s %.1f", a.State(), a.Progress())
	}
	a.Update(tick(30), p)
	if p.completed != 1 {
		t.Fatal("inactive action must not complete again")
	}
}

func TestAction_ToggleFlipsTwice(t *testing.T) {
	p := &recorder{}
	a := New[*recorder](Options{ID: "power", Kind: Toggle, Initial: true}, p)
	a.Request(tick(0), p)
	if a.Value() {
		t.Fatal("first completion should flip the value off")
	}
	a.Request(tick(0), p)
	if !a.Value() {
		t.Fatal("second completion should flip the value back on")
	}
	if p.completed != 2 || a.Engaged() {
		t.Fatalf("toggle should complete instantly each time, got %d completions, state %s", p.completed, a.State())
	}
}

func TestAction_InstantCompletesInRequest(t *testing.T) {
	p := &recorder{}
	a := New[*recorder](Options{ID: "scram", Kind: Instant}, p)
	a.Request(tick(0), p)
	if p.activated != 1 || p.deactivated != 1 || p.completed != 1 {
		t.Fatalf("instant action should activate, deactivate and complete once: %+v", *p)
	}
}

func TestAction_MaterialsGateAndPay(t *testing.T) {
	p := &recorder{}
	s := stock{"spare_parts": 1}
	env := Env{DeltaMs: 50, Storage: s}
	a := New[*recorder](Options{ID: "repair", Kind: Progress, Duration: 50, Costs: []Cost{{Material: "spare_parts", Count: 2}}}, p)
	if a.Request(env, p) {
		t.Fatal("action should be disabled without enough stock")
	}
	if len(a.Reasons()) != 1 {
		t.Fatalf("expected one blocking reason, got %v", a.Reasons())
	}
	s["spare_parts"] = 3
	if !a.Request(env, p) {
		t.Fatalf("action should be enabled with stock, reasons %v", a.Reasons())
	}
	a.Update(env, p)
	if s["spare_parts"] != 1 {
		t.Fatalf("completion should take exactly 2 parts, %d left", s["spare_parts"])
	}
}

func TestAction_DisabledWhileActiveStopsWithoutCompletion(t *testing.T) {
	p := &recorder{}
	a := New[*recorder](Options{ID: "aim", Kind: Progress, Duration: 100}, p)
	a.Request(tick(0), p)
	a.Update(tick(40), p)
	p.blocked = "no power"
	a.Update(tick(40), p)
	if a.Engaged() {
		t.Fatal("disabled action should be forced inactive")
	}
	if p.completed != 0 || p.cancelled != 0 {
		t.Fatalf("forced stop is neither completion nor cancel: %+v", *p)
	}
	if a.Enabled() {
		t.Fatal("action should report disabled")
	}
	if got := a.View().Reasons; len(got) != 1 || got[0] != "no power" {
		t.Fatalf("view should carry the blocking reason, got %v", got)
	}
}

func TestAction_CancelDiscardsProgress(t *testing.T) {
	p := &recorder{}
	s := stock{"fuel_rod": 1}
	env := Env{DeltaMs: 30, Storage: s}
	a := New[*recorder](Options{ID: "refuel", Kind: Progress, Duration: 100, Costs: []Cost{{Material: "fuel_rod", Count: 1}}}, p)
	a.Request(env, p)
	a.Update(env, p)
	a.Cancel(p)
	if a.Engaged() || a.Progress() != 0 {
		t.Fatal("cancel should deactivate and reset progress")
	}
	if p.cancelled != 1 || p.completed != 0 || s["fuel_rod"] != 1 {
		t.Fatalf("cancel must not pay or complete: %+v stock=%v", *p, s)
	}
	a.Cancel(p)
	if p.cancelled != 1 {
		t.Fatal("cancelling an inactive action is a no-op")
	}
}

func TestAction_RepeatedRequestKeepsProgress(t *testing.T) {
	p := &recorder{}
	a := New[*recorder](Options{ID: "ping", Kind: Progress, Duration: 100}, p)
	a.Request(tick(0), p)
	a.Update(tick(60), p)
	a.Request(tick(0), p)
	if a.Progress() != 60 || p.activated != 1 {
		t.Fatalf("engaged action should ignore a repeated request, progress %.1f", a.Progress())
	}
}

func TestAction_OperatorEviction(t *testing.T) {
	op := NewOperator("crew")
	pa, pb := &recorder{}, &recorder{}
	a := New[*recorder](Options{ID: "repair-a", Kind: Operator, Duration: 100, Operator: op}, pa)
	b := New[*recorder](Options{ID: "repair-b", Kind: Operator, Duration: 100, Operator: op}, pb)

	a.Request(tick(0), pa)
	if !op.Holds(a) || op.Task() != "repair-a" {
		t.Fatal("first operator action should claim the operator")
	}
	a.Update(tick(50), pa)
	b.Request(tick(0), pb)
	if !op.Holds(b) {
		t.Fatal("second request should take the operator")
	}
	a.Update(tick(50), pa)
	if a.Engaged() || pa.cancelled != 1 || pa.completed != 0 {
		t.Fatalf("evicted action should cancel on its next update: state=%s %+v", a.State(), *pa)
	}
	b.Update(tick(100), pb)
	if pb.completed != 1 {
		t.Fatal("holder should complete normally")
	}
	if op.Busy() {
		t.Fatal("operator should be free after completion")
	}
}

func TestAction_OperatorUnassignCancels(t *testing.T) {
	op := NewOperator("crew")
	p := &recorder{}
	a := New[*recorder](Options{ID: "refuel", Kind: Operator, Duration: 100, Operator: op}, p)
	a.Request(tick(0), p)
	op.Unassign()
	a.Update(tick(10), p)
	if a.Engaged() || p.cancelled != 1 {
		t.Fatal("unassigning the operator should cancel the action")
	}
}

func TestAction_OperatorKindNeedsToken(t *testing.T) {
	p := &recorder{}
	a := New[*recorder](Options{ID: "repair", Kind: Operator, Duration: 10}, p)
	if a.Request(tick(0), p) {
		t.Fatal("operator action without a token should be disabled")
	}
}

func TestGroup_HoldExclusive(t *testing.T) {
	pl, pr := &recorder{}, &recorder{}
	left := New[*recorder](Options{ID: "left", Kind: Hold}, pl)
	right := New[*recorder](Options{ID: "right", Kind: Hold}, pr)
	g := NewGroup(left, right)

	left.Request(tick(0), pl)
	left.Update(tick(1000), pl)
	if !left.Engaged() || pl.completed != 0 {
		t.Fatal("hold should stay active and never complete")
	}
	right.Request(tick(0), pr)
	if left.Engaged() || !right.Engaged() {
		t.Fatal("requesting one group member should deactivate the other")
	}
	if g.Engaged() != right {
		t.Fatal("group should report the engaged member")
	}
	right.Release(pr)
	if right.Engaged() || pr.cancelled != 0 {
		t.Fatal("release should deactivate without cancelling")
	}
}
