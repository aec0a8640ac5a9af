package game

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Sub-Sense/internal/effect"
	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/geom"
)

var (
	colBackground = color.RGBA{R: 8, G: 10, B: 14, A: 255}
	colWater      = color.RGBA{R: 10, G: 28, B: 44, A: 255}
	colRock       = color.RGBA{R: 70, G: 64, B: 56, A: 255}
	colBorder     = color.RGBA{R: 50, G: 80, B: 100, A: 255}
	colSub        = color.RGBA{R: 230, G: 200, B: 80, A: 255}
	colSubHurt    = color.RGBA{R: 255, G: 80, B: 60, A: 255}
	colFish       = color.RGBA{R: 120, G: 200, B: 220, A: 255}
	colPredator   = color.RGBA{R: 240, G: 110, B: 90, A: 255}
	colPlant      = color.RGBA{R: 70, G: 190, B: 90, A: 255}
	colEcho       = color.RGBA{R: 120, G: 255, B: 160, A: 200}
	colContact    = color.RGBA{R: 120, G: 255, B: 160, A: 120}
	colTarget     = color.RGBA{R: 255, G: 60, B: 60, A: 220}
	colText       = color.RGBA{R: 210, G: 220, B: 210, A: 255}
	colDim        = color.RGBA{R: 130, G: 140, B: 130, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	if !g.rocksSet {
		g.drawRocks()
		g.rocksSet = true
	}

	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.FillRect(screen, ox, oy, gw, gh, colWater, false)

	// The playfield is a sub-image so world drawing stays inside it.
	view := screen.SubImage(image.Rect(g.offX, g.offY, g.offX+g.gameWidth, g.offY+g.gameHeight)).(*ebiten.Image)
	blit := &ebiten.DrawImageOptions{GeoM: g.cam.geoM()}
	blit.ColorScale.ScaleWithColor(colRock)
	view.DrawImage(g.rockBuf, blit)
	g.drawWorld(view)

	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, colBorder, false)

	g.drawPanel(screen, g.offX+g.gameWidth+borderWidth, g.offY)
	g.drawLog(screen, g.width-logPanelWidth, g.height)
	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.status != "" && g.frame < g.statusUntil {
		g.print(screen, g.status, g.offX+8, g.offY+g.gameHeight-20, colText)
	}
}

// drawRocks fills every obstacle into the world-space rock buffer in white;
// the blit tints it.
func (g *Game) drawRocks() {
	g.rockBuf.Clear()
	for _, o := range g.model.Map().Obstacles() {
		pts := o.Shape.Points()
		if len(pts) < 3 {
			continue
		}
		var path vector.Path
		path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
		for _, p := range pts[1:] {
			path.LineTo(float32(p.X), float32(p.Y))
		}
		path.Close()
		vector.FillPath(g.rockBuf, &path, &vector.FillOptions{}, &vector.DrawPathOptions{AntiAlias: true})
	}
}

func (g *Game) drawWorld(dst *ebiten.Image) {
	m := g.model
	for _, p := range m.Plants() {
		if p.Samples() <= 0 {
			continue
		}
		x, y := g.cam.toScreen(p.Position().X, p.Position().Y)
		r := float32(p.Size() * g.cam.zoom / 2)
		vector.FillCircle(dst, x, y, r, colPlant, true)
	}

	s := m.Sub()
	for _, sn := range s.Sonars() {
		for _, e := range sn.Echoes() {
			if !sn.Effects().Has(effect.Echo) {
				break
			}
			x, y := g.cam.toScreen(e.X, e.Y)
			vector.FillCircle(dst, x, y, 2, colEcho, false)
		}
		for _, c := range sn.Contacts() {
			x, y := g.cam.toScreen(c.X, c.Y)
			vector.StrokeCircle(dst, x, y, float32(10*g.cam.zoom)+4, 1, colContact, true)
		}
	}

	for _, f := range m.Fish() {
		col := colFish
		if f.Species().Aggressive {
			col = colPredator
		}
		g.strokePolygon(dst, f.Polygon(), col)
	}
	if t := s.Target(); t != nil {
		x, y := g.cam.toScreen(t.Position().X, t.Position().Y)
		r := float32(t.Radius()*g.cam.zoom) + 6
		vector.StrokeCircle(dst, x, y, r, 1.5, colTarget, true)
	}

	col := colSub
	if s.Effects().Has(effect.Damage) || s.Destroyed() {
		col = colSubHurt
	}
	g.strokePolygon(dst, s.Polygon(), col)
	g.drawHeading(dst, s.Position(), s.Body().Heading(), s.Radius(), col)
}

func (g *Game) strokePolygon(dst *ebiten.Image, poly geom.Polygon, col color.Color) {
	pts := poly.Points()
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		ax, ay := g.cam.toScreen(a.X, a.Y)
		bx, by := g.cam.toScreen(b.X, b.Y)
		vector.StrokeLine(dst, ax, ay, bx, by, 1.5, col, true)
	}
}

// drawHeading draws a short line out of the bow.
func (g *Game) drawHeading(dst *ebiten.Image, p geom.Point, h geom.Vector, length float64, col color.Color) {
	tip := p.Add(h.Scale(length * 1.4))
	ax, ay := g.cam.toScreen(p.X, p.Y)
	bx, by := g.cam.toScreen(tip.X, tip.Y)
	vector.StrokeLine(dst, ax, ay, bx, by, 1, col, true)
}

// print draws s with the HUD face, top-left at (x, y).
func (g *Game) print(dst *ebiten.Image, s string, x, y int, col color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(col)
	text.Draw(dst, s, g.face, op)
}

// fishLabel is the panel line for a targeted fish.
func fishLabel(f *entity.Fish) string {
	if f == nil {
		return "none"
	}
	return fmt.Sprintf("%s %s hp %.0f", f.Label(), f.Species().Name, f.Health())
}
