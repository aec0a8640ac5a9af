package game

import (
	"math"
	"strings"
	"testing"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/model"
	"github.com/Garsondee/Sub-Sense/internal/sub"
)

func TestStepClamp(t *testing.T) {
	if got := stepClamp(0.9, 0.25, -1, 1); got != 1 {
		t.Fatalf("expected clamp to 1, got %.2f", got)
	}
	if got := stepClamp(-0.9, -0.25, -1, 1); got != -1 {
		t.Fatalf("expected clamp to -1, got %.2f", got)
	}
	if got := stepClamp(0.5, -0.25, -1, 1); got != 0.25 {
		t.Fatalf("expected 0.25, got %.2f", got)
	}
}

func TestSpeeds_SlowerFaster(t *testing.T) {
	if slower(1) != 0.5 || slower(0) != 0 {
		t.Fatal("slower should step down and stop at pause")
	}
	if faster(1) != 2 || faster(4) != 4 {
		t.Fatal("faster should step up and stop at the top speed")
	}
	if faster(0) != 0.5 {
		t.Fatal("faster from pause should give half speed")
	}
}

func TestNextTarget_Cycles(t *testing.T) {
	cs := []sub.Contact{{ID: 3}, {ID: 7}, {ID: 9}}
	if _, ok := nextTarget(nil, 0); ok {
		t.Fatal("no contacts means no target")
	}
	if id, _ := nextTarget(cs, 0); id != 3 {
		t.Fatalf("no current target should pick the first, got %d", id)
	}
	if id, _ := nextTarget(cs, 7); id != 9 {
		t.Fatalf("expected 9 after 7, got %d", id)
	}
	if id, _ := nextTarget(cs, 9); id != 3 {
		t.Fatalf("expected wrap to 3, got %d", id)
	}
}

func TestCamera_RoundTrip(t *testing.T) {
	c := camera{x: 500, y: 400, zoom: 1.5, offX: 16, offY: 16, vpW: 800, vpH: 600}
	sx, sy := c.toScreen(620, 330)
	wx, wy := c.toWorld(float64(sx), float64(sy))
	if math.Abs(wx-620) > 0.01 || math.Abs(wy-330) > 0.01 {
		t.Fatalf("round trip gave (%.2f,%.2f)", wx, wy)
	}
	cx, cy := c.toScreen(500, 400)
	if cx != 416 || cy != 316 {
		t.Fatalf("camera centre should map to the viewport centre, got (%.0f,%.0f)", cx, cy)
	}
	if !c.inViewport(20, 20) || c.inViewport(10, 20) {
		t.Fatal("viewport test is off")
	}
}

func TestCamera_ClampAndZoom(t *testing.T) {
	c := camera{x: 0, y: 5000, zoom: 1, vpW: 800, vpH: 600}
	c.clamp(4000, 3000)
	if c.x != 400 || c.y != 2700 {
		t.Fatalf("expected (400,2700), got (%.0f,%.0f)", c.x, c.y)
	}
	c.setZoom(0.1)
	c.clamp(1000, 3000)
	if c.zoom != zoomMin || c.x != 500 {
		t.Fatalf("a world narrower than the view should be centred, zoom %.2f x %.0f", c.zoom, c.x)
	}
	c.setZoom(10)
	if c.zoom != zoomMax {
		t.Fatalf("zoom should clamp to %.1f", zoomMax)
	}
}

func TestGridLayout_CellAt(t *testing.T) {
	l := gridLayout{x: 100, y: 200, cell: 20, w: 6, h: 3}
	if c, ok := l.cellAt(145, 215); !ok || c != (sub.Cell{X: 2, Y: 0}) {
		t.Fatalf("expected cell (2,0), got %+v %v", c, ok)
	}
	if _, ok := l.cellAt(99, 210); ok {
		t.Fatal("left of the grid is not a cell")
	}
	if _, ok := l.cellAt(150, 260); ok {
		t.Fatal("below the grid is not a cell")
	}
	if _, ok := (gridLayout{}).cellAt(0, 0); ok {
		t.Fatal("an undrawn grid has no cells")
	}
}

func TestPanelRow_Contains(t *testing.T) {
	r := panelRow{x0: 10, y0: 20, x1: 110, y1: 34}
	if !r.contains(10, 20) || r.contains(110, 25) || r.contains(50, 34) {
		t.Fatal("row bounds are half-open")
	}
}

func TestActionLine(t *testing.T) {
	v := action.View{Name: "ping", State: "progressing", Engaged: true, Progress: 500, ProgressMax: 2000}
	if line := actionLine(v); !strings.Contains(line, "25%") {
		t.Fatalf("engaged progress should show a percentage: %q", line)
	}
	v = action.View{Name: "shoot", State: "inactive", Reasons: []string{"no ammo"}}
	if line := actionLine(v); !strings.Contains(line, "(no ammo)") {
		t.Fatalf("reasons should be listed: %q", line)
	}
	v = action.View{Name: "power", Kind: "toggle", State: "inactive", Value: true}
	if line := actionLine(v); !strings.HasSuffix(line, " on") {
		t.Fatalf("toggle should show its value: %q", line)
	}
}

func TestDebugReport(t *testing.T) {
	m, err := model.New(model.DefaultConfig(), model.WithMapSize(2400, 1800), model.WithFish(4), model.WithPlants(2), model.WithSeed(5))
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	m.RunTicks(20, nil)
	rep, err := debugReport(m, 5)
	if err != nil {
		t.Fatalf("debugReport: %v", err)
	}
	for _, want := range []string{"seed=5 tick=20", "== subsystems ==", "reactor", "== last", "== view ==", `"subsystems"`} {
		if !strings.Contains(rep, want) {
			t.Fatalf("report missing %q:\n%s", want, rep)
		}
	}
}
