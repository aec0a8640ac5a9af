package game

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/sub"
)

const (
	lineH    = 14 // Face7x13 line height plus a pixel
	charW    = 7
	gridCell = 26
	aimBarW  = 300
	aimBarH  = 12
)

var (
	colPanel     = color.RGBA{R: 14, G: 20, B: 26, A: 255}
	colRowActive = color.RGBA{R: 30, G: 60, B: 40, A: 255}
	colBar       = color.RGBA{R: 40, G: 50, B: 60, A: 255}
	colProgress  = color.RGBA{R: 90, G: 170, B: 110, A: 255}
	colWarn      = color.RGBA{R: 240, G: 170, B: 60, A: 255}
	colGridLine  = color.RGBA{R: 40, G: 60, B: 70, A: 255}
	colPicked    = color.RGBA{R: 250, G: 230, B: 120, A: 255}
)

// panelRow is a clickable action line in the subsystem panel.
type panelRow struct {
	x0, y0, x1, y1 int
	id             string
	engaged        bool
}

func (r panelRow) contains(mx, my int) bool {
	return mx >= r.x0 && mx < r.x1 && my >= r.y0 && my < r.y1
}

// gridLayout is where the equipment grid was last drawn.
type gridLayout struct {
	x, y, cell int
	w, h       int // in cells
}

// cellAt maps a screen point to a grid cell.
func (l gridLayout) cellAt(mx, my int) (sub.Cell, bool) {
	if l.cell <= 0 || mx < l.x || my < l.y {
		return sub.Cell{}, false
	}
	c := sub.Cell{X: (mx - l.x) / l.cell, Y: (my - l.y) / l.cell}
	if c.X >= l.w || c.Y >= l.h {
		return sub.Cell{}, false
	}
	return c, true
}

// actionLine formats one action for the panel.
func actionLine(v action.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-11s", v.Name, v.State)
	if v.Kind == "toggle" {
		if v.Value {
			b.WriteString(" on")
		} else {
			b.WriteString(" off")
		}
	}
	if v.ProgressMax > 0 && v.Engaged {
		fmt.Fprintf(&b, " %3.0f%%", 100*v.Progress/v.ProgressMax)
	}
	if len(v.Reasons) > 0 {
		b.WriteString(" (" + strings.Join(v.Reasons, ", ") + ")")
	}
	return b.String()
}

// statLine lists a subsystem's stats in key order.
func statLine(v sub.View) string {
	keys := make([]string, 0, len(v.Stats))
	for k := range v.Stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %.1f", k, v.Stats[k]))
	}
	return strings.Join(parts, "  ")
}

// drawPanel draws the submarine status, every subsystem's actions, the aim
// bar, the equipment grid and the inventory, and records click targets.
func (g *Game) drawPanel(screen *ebiten.Image, x, y int) {
	s := g.model.Sub()
	vector.FillRect(screen, float32(x), float32(y), panelWidth-borderWidth, float32(g.gameHeight), colPanel, false)
	g.rows = g.rows[:0]
	x += 6
	y += 4

	op := s.Operator().Task()
	if op == "" {
		op = "idle"
	}
	header := []string{
		fmt.Sprintf("tick %d  speed %.1fx  kills %d", g.model.Tick(), g.simSpeed, g.model.Kills()),
		fmt.Sprintf("hull %.0f/%.0f  flood %.1f/%.0f  leaks %d", s.Health(), s.Hull().Health, s.Flood(), s.Hull().FloodCapacity, s.Leaks()),
		fmt.Sprintf("power %+.1f  (gen %.1f  use %.1f)", s.PowerBalance(), s.PowerGeneration(), s.PowerConsumption()),
		fmt.Sprintf("throttle %+.2f  rudder %+.2f", s.Throttle(), s.Direction()),
		"crew: " + op,
		"target: " + fishLabel(s.Target()),
	}
	for i, line := range header {
		col := colText
		if i == 2 && s.PowerBalance() < 0 {
			col = colWarn
		}
		g.print(screen, line, x, y, col)
		y += lineH
	}
	y += 4

	for _, ss := range s.Subsystems() {
		v := ss.View()
		title := fmt.Sprintf("%s  draw %.1f/%.1f", v.Name, v.Consumption, v.Nominal)
		if v.Generation > 0 {
			title += fmt.Sprintf("  gen %.1f", v.Generation)
		}
		for _, d := range v.Damage {
			title += " [" + d.Name + "]"
		}
		g.print(screen, title, x, y, colPicked)
		y += lineH
		if st := statLine(v); st != "" && ss.ID() == g.picked {
			g.print(screen, "  "+st, x, y, colDim)
			y += lineH
		}
		for _, a := range ss.Actions() {
			// Repair only matters once something is broken.
			if a.Name() == "repair" && len(v.Damage) == 0 && !a.Engaged() {
				continue
			}
			y = g.drawActionRow(screen, a.View(), x, y)
		}
	}
	g.print(screen, "hull", x, y, colPicked)
	y += lineH
	y = g.drawActionRow(screen, s.Patch().View(), x, y)
	y += 4

	if ws := s.Weapons(); len(ws) > 0 {
		y = g.drawAimBar(screen, ws[0], x, y)
	}
	y = g.drawGrid(screen, s, x, y)

	inv := s.Inventory()
	parts := make([]string, 0, len(inv))
	for _, it := range inv {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Material, it.Count))
	}
	if len(parts) == 0 {
		parts = append(parts, "empty")
	}
	g.print(screen, "hold: "+strings.Join(parts, ", "), x, y+4, colText)
}

// drawActionRow draws one action line and registers it as clickable. Hold
// actions are driven by keys, not clicks, so they are listed without a row.
func (g *Game) drawActionRow(screen *ebiten.Image, v action.View, x, y int) int {
	w := panelWidth - borderWidth - 12
	if v.Engaged {
		vector.FillRect(screen, float32(x), float32(y), float32(w), lineH, colRowActive, false)
		if v.ProgressMax > 0 {
			frac := float32(v.Progress / v.ProgressMax)
			vector.FillRect(screen, float32(x), float32(y+lineH-2), float32(w)*frac, 2, colProgress, false)
		}
	}
	col := colText
	if !v.Enabled {
		col = colDim
	}
	g.print(screen, "  "+actionLine(v), x, y, col)
	if v.Kind != "hold" {
		g.rows = append(g.rows, panelRow{x0: x, y0: y, x1: x + w, y1: y + lineH, id: v.ID, engaged: v.Engaged})
	}
	return y + lineH
}

// drawAimBar shows the weapon's target windows and the sweeping crosshair.
func (g *Game) drawAimBar(screen *ebiten.Image, w *sub.Weapon, x, y int) int {
	g.print(screen, fmt.Sprintf("aim  ammo %d", w.Ammo()), x, y, colText)
	y += lineH
	bx, by := float32(x), float32(y)
	vector.FillRect(screen, bx, by, aimBarW, aimBarH, colBar, false)
	for _, t := range w.Targets() {
		vector.FillRect(screen, bx+float32(t.Start)*aimBarW, by, float32(t.End-t.Start)*aimBarW, aimBarH, colTarget, false)
	}
	if w.Aim().Engaged() {
		c := w.Crosshair()
		vector.StrokeRect(screen, bx+float32(c.Start)*aimBarW, by-1, float32(c.End-c.Start)*aimBarW, aimBarH+2, 1.5, colPicked, false)
	}
	return y + aimBarH + 6
}

// drawGrid draws the equipment grid; a picked subsystem is outlined and the
// next click on an empty cell moves it there.
func (g *Game) drawGrid(screen *ebiten.Image, s *sub.Sub, x, y int) int {
	grid := s.Grid()
	g.grid = gridLayout{x: x, y: y, cell: gridCell, w: grid.X, h: grid.Y}
	for cx := 0; cx <= grid.X; cx++ {
		fx := float32(x + cx*gridCell)
		vector.StrokeLine(screen, fx, float32(y), fx, float32(y+grid.Y*gridCell), 1, colGridLine, false)
	}
	for cy := 0; cy <= grid.Y; cy++ {
		fy := float32(y + cy*gridCell)
		vector.StrokeLine(screen, float32(x), fy, float32(x+grid.X*gridCell), fy, 1, colGridLine, false)
	}
	for _, ss := range s.Subsystems() {
		c, sz := ss.Cell(), ss.Size()
		rx := float32(x + c.X*gridCell + 2)
		ry := float32(y + c.Y*gridCell + 2)
		rw := float32(sz.X*gridCell - 4)
		rh := float32(sz.Y*gridCell - 4)
		fill := colBar
		if ss.On() {
			fill = colRowActive
		}
		vector.FillRect(screen, rx, ry, rw, rh, fill, false)
		if ss.ID() == g.picked {
			vector.StrokeRect(screen, rx, ry, rw, rh, 2, colPicked, false)
		}
		label := ss.Name()
		if n := int(rw) / charW; len(label) > n && n > 0 {
			label = label[:n]
		}
		g.print(screen, label, int(rx)+2, int(ry)+2, colText)
	}
	return y + grid.Y*gridCell + 4
}

// drawLog lists the newest events from the bottom of the log column up.
func (g *Game) drawLog(screen *ebiten.Image, x, bottom int) {
	vector.FillRect(screen, float32(x), 0, logPanelWidth, float32(bottom), colPanel, false)
	g.print(screen, "events", x+6, 4, colPicked)
	maxLines := (bottom - 2*lineH) / lineH
	entries := g.model.Events().Last(maxLines)
	y := bottom - lineH - 4
	maxChars := (logPanelWidth - 12) / charW
	for i := len(entries) - 1; i >= 0 && y > lineH; i-- {
		line := entries[i].String()
		if len(line) > maxChars {
			line = line[:maxChars]
		}
		g.print(screen, line, x+6, y, colDim)
		y -= lineH
	}
}

// drawHUD renders the key legend into hudBuf at 1x and blits it scaled up
// over the bottom-left of the playfield.
func (g *Game) drawHUD(screen *ebiten.Image) {
	speed := fmt.Sprintf("%.1fx", g.simSpeed)
	if g.simSpeed == 0 {
		speed = "PAUSED"
	}
	follow := "off"
	if g.follow {
		follow = "on"
	}
	lines := []string{
		fmt.Sprintf("SIM %s  P pause  ,/. speed", speed),
		"W/S throttle  A/D steer  R/F reactor",
		"Q aim  Space fire  T reload  Tab target",
		"E ping  G collect  B battery  V patch",
		"Z scram  Y refuel  1-9 power",
		fmt.Sprintf("zoom %.1fx  L follow %s  C copy", g.cam.zoom, follow),
	}

	const padX, padY = 4, 3
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(g.offX/hudScale + 4)
	by := float32((g.offY+g.gameHeight)/hudScale) - boxH - 4

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 14, A: 200}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, colBorder, false)
	for i, line := range lines {
		g.print(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH, colText)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}
