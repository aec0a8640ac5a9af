package sub

import (
	"fmt"

	"github.com/Garsondee/Sub-Sense/internal/action"
)

// Window is an interval on the aim bar, as shares of the full bar.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Overlaps reports whether the two intervals share any length.
func (w Window) Overlaps(o Window) bool { return w.Start < o.End && o.Start < w.End }

// Weapon fires torpedoes. Aiming sweeps a crosshair along a bar holding a
// few random target windows; a shot hits once per window the crosshair
// overlaps at the moment of firing.
type Weapon struct {
	base
	cfg     WeaponConfig
	ammo    int
	targets []Window
	shots   int
	hits    int

	aim    *action.Action[*Context]
	shoot  *action.Action[*Context]
	reload *action.Action[*Context]
}

func newWeapon(id int, cfg WeaponConfig, op *action.OperatorToken, repairMs float64) *Weapon {
	w := &Weapon{cfg: cfg, ammo: cfg.Ammo}
	w.init(id, KindWeapon, cfg.Common, op, repairMs, nil)
	w.aim = w.addAction(action.Options{ID: "aim", Kind: action.Progress, Duration: cfg.AimMs}, aimBehavior{w})
	w.shoot = w.addAction(action.Options{ID: "shoot", Kind: action.Instant}, shootBehavior{w})
	w.reload = w.addAction(action.Options{
		ID:       "reload",
		Kind:     action.Progress,
		Duration: cfg.ReloadMs,
		Costs:    []action.Cost{{Material: Torpedo, Count: 1}},
	}, reloadBehavior{w})
	return w
}

func (w *Weapon) Ammo() int                        { return w.ammo }
func (w *Weapon) Targets() []Window                { return w.targets }
func (w *Weapon) Shots() int                       { return w.shots }
func (w *Weapon) Hits() int                        { return w.hits }
func (w *Weapon) Aim() *action.Action[*Context]    { return w.aim }
func (w *Weapon) Shoot() *action.Action[*Context]  { return w.shoot }
func (w *Weapon) Reload() *action.Action[*Context] { return w.reload }
func (w *Weapon) SetAmmo(n int)                    { w.ammo = n }
func (w *Weapon) SetTargets(t []Window)            { w.targets = t }

// Crosshair is the window the shot would cover right now.
func (w *Weapon) Crosshair() Window {
	f := w.aim.Fraction()
	half := w.cfg.Crosshair * w.efficiency() / 2
	return Window{Start: f - half, End: f + half}
}

// Update advances aiming and reloading.
func (w *Weapon) Update(ctx *Context) { w.tick(ctx) }

func (w *Weapon) View() View {
	v := w.view(w, map[string]float64{
		"ammo":    float64(w.ammo),
		"maxAmmo": float64(w.cfg.MaxAmmo),
		"shots":   float64(w.shots),
		"hits":    float64(w.hits),
	})
	if w.aim.Progressing() {
		c := w.Crosshair()
		v.Stats["crosshairStart"] = c.Start
		v.Stats["crosshairEnd"] = c.End
		for i, t := range w.targets {
			v.Stats[fmt.Sprintf("target%dStart", i)] = t.Start
			v.Stats[fmt.Sprintf("target%dEnd", i)] = t.End
		}
	}
	return v
}

// aimBehavior rolls fresh targets each time aiming starts.
type aimBehavior struct{ w *Weapon }

func (a aimBehavior) Check(_ *Context, r *action.Reasons) { a.w.requirePower(r) }

func (a aimBehavior) Activate(ctx *Context) {
	cfg := a.w.cfg
	n := 1
	if cfg.MaxTargets > 1 {
		n += ctx.Rng.Intn(cfg.MaxTargets)
	}
	a.w.targets = a.w.targets[:0]
	for i := 0; i < n; i++ {
		start := 0.2 + ctx.Rng.Float64()*(0.8-cfg.TargetWidth)
		a.w.targets = append(a.w.targets, Window{Start: start, End: start + cfg.TargetWidth})
	}
}

func (a aimBehavior) Deactivate(*Context) { a.w.targets = nil }

func (a aimBehavior) Complete(ctx *Context) {
	ctx.Log.Add(ctx.Tick, a.w.name, "sub", "weapon", "aim", "window closed", 0)
}

// shootBehavior fires while aiming.
type shootBehavior struct{ w *Weapon }

func (s shootBehavior) Check(_ *Context, r *action.Reasons) {
	s.w.requirePower(r)
	if s.w.ammo <= 0 {
		r.Add("no ammo")
	}
	if !s.w.aim.Progressing() {
		r.Add("not aiming")
	}
}

func (s shootBehavior) Complete(ctx *Context) {
	w := s.w
	cross := w.Crosshair()
	windows := 0
	for _, t := range w.targets {
		if cross.Overlaps(t) {
			windows++
		}
	}
	w.ammo--
	w.shots++
	w.aim.Cancel(ctx)

	if windows == 0 {
		ctx.Log.Add(ctx.Tick, w.name, "sub", "weapon", "miss", "crosshair off target", 0)
		return
	}
	target := ctx.Sub.Target()
	if target == nil {
		ctx.Log.Add(ctx.Tick, w.name, "sub", "weapon", "miss", "no target", 0)
		return
	}
	from := ctx.Sub.Position()
	if from.DistanceTo(target.Position()) > w.cfg.Range || !ctx.Map.LineOfSight(from, target.Position()) {
		ctx.Log.Add(ctx.Tick, w.name, "sub", "weapon", "miss", target.Label()+" out of range", 0)
		return
	}
	w.hits++
	dmg := w.cfg.Damage * float64(windows)
	killed := target.Hit(dmg, w.name)
	ctx.Log.Add(ctx.Tick, w.name, "sub", "weapon", "hit", target.Label(), dmg)
	if killed {
		ctx.Log.Add(ctx.Tick, w.name, "sub", "weapon", "kill", target.Label(), 0)
	}
}

// reloadBehavior loads one torpedo from storage.
type reloadBehavior struct{ w *Weapon }

func (rb reloadBehavior) Check(_ *Context, r *action.Reasons) {
	rb.w.requirePower(r)
	if rb.w.ammo >= rb.w.cfg.MaxAmmo {
		r.Add("magazine full")
	}
}

func (rb reloadBehavior) Complete(*Context) { rb.w.ammo++ }
