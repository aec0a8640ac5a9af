// Package game is the ebiten viewer for the submarine simulation. It turns
// keyboard and mouse input into a model.Controller, steps the model at a
// fixed tick and draws the cave, the fish and the submarine's subsystems.
package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Sub-Sense/internal/model"
)

const (
	// borderWidth is the pixel gap between the window edge and the playfield.
	borderWidth = 16
	viewWidth   = 1100
	viewHeight  = 820

	// panelWidth is the subsystem panel right of the playfield.
	panelWidth    = 440
	logPanelWidth = 340

	// hudScale is the integer upscale applied to the key legend.
	hudScale = 2

	// statusFrames is how long a status line stays on screen.
	statusFrames = 180
)

// Game implements ebiten.Game around one model run.
type Game struct {
	width      int
	height     int
	gameWidth  int
	gameHeight int
	offX       int
	offY       int

	model *model.Model
	ctl   *model.Controller
	keys  []binding

	cam    camera
	follow bool

	face     *text.GoXFace
	rockBuf  *ebiten.Image // obstacles in world space, drawn once
	hudBuf   *ebiten.Image
	rocksSet bool

	prevKeys map[ebiten.Key]bool
	showHUD  bool

	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	rows   []panelRow // clickable action rows from the last draw
	grid   gridLayout
	picked int // subsystem picked for a grid move, 0 when none

	frame       int
	status      string
	statusUntil int // frame
}

// New builds a model from cfg and wraps it in a viewer.
func New(cfg model.Config, opts ...model.Option) (*Game, error) {
	m, err := model.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("start model: %w", err)
	}
	g := &Game{
		width:      borderWidth + viewWidth + borderWidth + panelWidth + logPanelWidth,
		height:     borderWidth + viewHeight + borderWidth,
		gameWidth:  viewWidth,
		gameHeight: viewHeight,
		offX:       borderWidth,
		offY:       borderWidth,
		model:      m,
		ctl:        model.NewController(),
		face:       text.NewGoXFace(basicfont.Face7x13),
		prevKeys:   make(map[ebiten.Key]bool),
		showHUD:    true,
		simSpeed:   1,
		follow:     true,
	}
	g.keys = bindingsFor(m.Sub())
	b := m.Map().Bounds()
	g.rockBuf = ebiten.NewImage(int(b.Width()), int(b.Height()))
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	p := m.Sub().Position()
	g.cam = camera{
		x:    p.X,
		y:    p.Y,
		zoom: 1,
		offX: float64(g.offX),
		offY: float64(g.offY),
		vpW:  float64(g.gameWidth),
		vpH:  float64(g.gameHeight),
	}
	return g, nil
}

// Model returns the running simulation.
func (g *Game) Model() *model.Model { return g.model }

func (g *Game) Update() error {
	g.frame++
	g.handleInput()
	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick()
	}
	if g.follow {
		p := g.model.Sub().Position()
		g.cam.x, g.cam.y = p.X, p.Y
	}
	b := g.model.Map().Bounds()
	g.cam.clamp(b.Width(), b.Height())
	return nil
}

// simTick runs one fixed-length model tick and clears the one-shot input.
func (g *Game) simTick() {
	g.model.UpdateState(g.model.Config().TickMs, g.ctl)
	g.ctl.Reset()
}

// setStatus shows msg under the playfield for a short while.
func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusUntil = g.frame + statusFrames
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// GameWidth returns the playfield width.
func (g *Game) GameWidth() int {
	return g.gameWidth
}
