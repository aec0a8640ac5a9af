package game

import (
	"fmt"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/sub"
)

const (
	throttleStep = 0.25
	controlStep  = 0.1
)

// speeds are the selectable simulation multipliers.
var speeds = []float64{0, 0.5, 1, 2, 4}

// binding maps a key press to an action request.
type binding struct {
	key ebiten.Key
	id  string
}

// bindingsFor binds the first unit of each kind to its hotkeys.
func bindingsFor(s *sub.Sub) []binding {
	var out []binding
	add := func(k ebiten.Key, a *action.Action[*sub.Context]) {
		if a != nil {
			out = append(out, binding{key: k, id: a.ID()})
		}
	}
	if ws := s.Weapons(); len(ws) > 0 {
		add(ebiten.KeyQ, ws[0].Aim())
		add(ebiten.KeySpace, ws[0].Shoot())
		add(ebiten.KeyT, ws[0].Reload())
	}
	if ss := s.Sonars(); len(ss) > 0 {
		add(ebiten.KeyE, ss[0].Ping())
	}
	if st := s.Storages(); len(st) > 0 {
		add(ebiten.KeyG, st[0].Collect())
	}
	if bs := s.Batteries(); len(bs) > 0 {
		add(ebiten.KeyB, bs[0].Discharge())
	}
	if rs := s.Reactors(); len(rs) > 0 {
		add(ebiten.KeyZ, rs[0].Scram())
		add(ebiten.KeyY, rs[0].Refuel())
	}
	add(ebiten.KeyV, s.Patch())

	digits := []ebiten.Key{
		ebiten.Key1, ebiten.Key2, ebiten.Key3,
		ebiten.Key4, ebiten.Key5, ebiten.Key6,
		ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
	for i, ss := range s.Subsystems() {
		if i >= len(digits) {
			break
		}
		add(digits[i], ss.Power())
	}
	return out
}

// stepClamp adds d to v and clamps the result to [lo, hi].
func stepClamp(v, d, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v+d))
}

// slower returns the next lower speed.
func slower(cur float64) float64 {
	for i := len(speeds) - 1; i >= 0; i-- {
		if speeds[i] < cur {
			return speeds[i]
		}
	}
	return speeds[0]
}

// faster returns the next higher speed.
func faster(cur float64) float64 {
	for _, s := range speeds {
		if s > cur {
			return s
		}
	}
	return speeds[len(speeds)-1]
}

// nextTarget cycles through contact ids after current, wrapping around.
func nextTarget(contacts []sub.Contact, current int) (int, bool) {
	if len(contacts) == 0 {
		return 0, false
	}
	for i, c := range contacts {
		if c.ID == current {
			return contacts[(i+1)%len(contacts)].ID, true
		}
	}
	return contacts[0].ID, true
}

// pressed reports an edge-triggered key press and records the key state.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput turns this frame's keyboard and mouse state into controller
// input and viewer changes.
func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}
	s := g.model.Sub()

	g.ctl.SetHeld(sub.SteerLeftKey, ebiten.IsKeyPressed(ebiten.KeyA))
	g.ctl.SetHeld(sub.SteerRightKey, ebiten.IsKeyPressed(ebiten.KeyD))
	if g.pressed(cur, ebiten.KeyW) {
		g.adjust(sub.SteeringThrottleKey, throttleStep, -1, 1)
	}
	if g.pressed(cur, ebiten.KeyS) {
		g.adjust(sub.SteeringThrottleKey, -throttleStep, -1, 1)
	}
	if rs := s.Reactors(); len(rs) > 0 {
		if g.pressed(cur, ebiten.KeyR) {
			g.adjustFrom(sub.ReactorControlKey, rs[0].Control(), controlStep)
		}
		if g.pressed(cur, ebiten.KeyF) {
			g.adjustFrom(sub.ReactorControlKey, rs[0].Control(), -controlStep)
		}
	}
	for _, b := range g.keys {
		if g.pressed(cur, b.key) {
			g.ctl.Press(b.id)
		}
	}
	if g.pressed(cur, ebiten.KeyTab) {
		current := 0
		if t := s.Target(); t != nil {
			current = t.ID()
		}
		if id, ok := nextTarget(g.sonarContacts(), current); ok {
			g.ctl.SelectTarget(id)
		}
	}

	g.handleCamera(cur)

	if g.pressed(cur, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(cur, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(cur, ebiten.KeyComma) {
		g.simSpeed = slower(g.simSpeed)
	}
	if g.pressed(cur, ebiten.KeyPeriod) {
		g.simSpeed = faster(g.simSpeed)
	}
	if g.pressed(cur, ebiten.KeyC) {
		g.copyReport()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		g.handleClick(mx, my)
	}
	g.prevKeys = cur
}

func (g *Game) adjust(key string, d, lo, hi float64) {
	g.ctl.SetValue(key, stepClamp(g.ctl.Value(key, 0), d, lo, hi))
}

// adjustFrom steps a value that starts from the subsystem's own setting.
func (g *Game) adjustFrom(key string, current, d float64) {
	g.ctl.SetValue(key, stepClamp(g.ctl.Value(key, current), d, 0, 1))
}

func (g *Game) handleCamera(cur map[ebiten.Key]bool) {
	pan := 8.0 / g.cam.zoom
	panned := false
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.y -= pan
		panned = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.y += pan
		panned = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.x -= pan
		panned = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.x += pan
		panned = true
	}
	if panned {
		g.follow = false
	}
	if g.pressed(cur, ebiten.KeyL) {
		g.follow = !g.follow
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.setZoom(g.cam.zoom * math.Pow(1.12, wy))
	}
	if g.pressed(cur, ebiten.KeyEqual) {
		g.cam.setZoom(g.cam.zoom * 1.25)
	}
	if g.pressed(cur, ebiten.KeyMinus) {
		g.cam.setZoom(g.cam.zoom / 1.25)
	}
}

// handleClick routes a click to the playfield, an action row or the grid.
func (g *Game) handleClick(mx, my int) {
	if g.cam.inViewport(float64(mx), float64(my)) {
		g.clickWorld(mx, my)
		return
	}
	for _, r := range g.rows {
		if r.contains(mx, my) {
			if r.engaged {
				g.ctl.CancelAction(r.id)
			} else {
				g.ctl.Press(r.id)
			}
			return
		}
	}
	if c, ok := g.grid.cellAt(mx, my); ok {
		g.clickGrid(c)
	}
}

// clickWorld targets the fish under the cursor.
func (g *Game) clickWorld(mx, my int) {
	wx, wy := g.cam.toWorld(float64(mx), float64(my))
	pick := 16.0 / g.cam.zoom
	best := math.Inf(1)
	id := 0
	for _, f := range g.model.Fish() {
		p := f.Position()
		d := math.Hypot(p.X-wx, p.Y-wy)
		if d < pick+f.Radius() && d < best {
			best, id = d, f.ID()
		}
	}
	if id != 0 {
		g.ctl.SelectTarget(id)
	}
}

// clickGrid picks the subsystem in cell c, or moves the picked one there.
func (g *Game) clickGrid(c sub.Cell) {
	s := g.model.Sub()
	for _, ss := range s.Subsystems() {
		o, sz := ss.Cell(), ss.Size()
		if c.X >= o.X && c.X < o.X+sz.X && c.Y >= o.Y && c.Y < o.Y+sz.Y {
			if g.picked == ss.ID() {
				g.picked = 0
			} else {
				g.picked = ss.ID()
			}
			return
		}
	}
	if g.picked != 0 {
		g.ctl.RequestMove(sub.Move{Subsystem: g.picked, Cell: c})
		g.picked = 0
	}
}

// sonarContacts merges the contact lists of every sonar, nearest first.
func (g *Game) sonarContacts() []sub.Contact {
	var out []sub.Contact
	seen := map[int]bool{}
	for _, sn := range g.model.Sub().Sonars() {
		for _, c := range append(sn.Contacts(), sn.Pinged()...) {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// copyReport puts the debug report on the system clipboard.
func (g *Game) copyReport() {
	rep, err := debugReport(g.model, reportEvents)
	if err == nil {
		err = clipboard.WriteAll(rep)
	}
	if err != nil {
		g.setStatus(fmt.Sprintf("copy failed: %v", err))
		return
	}
	g.setStatus("debug report copied")
}
