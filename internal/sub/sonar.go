package sub

import (
	"math"
	"sort"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/effect"
	"github.com/Garsondee/Sub-Sense/internal/geom"
)

// Contact is an entity the sonar can hear.
type Contact struct {
	ID       int     `json:"id"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
	Active   bool    `json:"active"`
}

// Echo is one wall return from a ping.
type Echo struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
}

// Sonar listens passively every tick; a ping charges for a while and then
// sweeps a fan of rays against the cave walls.
type Sonar struct {
	base
	cfg      SonarConfig
	contacts []Contact
	pinged   []Contact
	echoes   []Echo
	pings    int
	ping     *action.Action[*Context]
}

func newSonar(id int, cfg SonarConfig, op *action.OperatorToken, repairMs float64) *Sonar {
	s := &Sonar{cfg: cfg}
	s.init(id, KindSonar, cfg.Common, op, repairMs, nil)
	s.ping = s.addAction(action.Options{ID: "ping", Kind: action.Progress, Duration: cfg.PingMs}, pingBehavior{s})
	return s
}

func (s *Sonar) Contacts() []Contact            { return s.contacts }
func (s *Sonar) Pinged() []Contact              { return s.pinged }
func (s *Sonar) Echoes() []Echo                 { return s.echoes }
func (s *Sonar) Pings() int                     { return s.pings }
func (s *Sonar) Ping() *action.Action[*Context] { return s.ping }

// PowerConsumption adds the ping draw while a ping charges.
func (s *Sonar) PowerConsumption() float64 {
	if !s.On() {
		return 0
	}
	draw := s.NominalPowerConsumption()
	if s.ping.Progressing() {
		draw += s.cfg.PingDraw * s.drawFactor()
	}
	return draw
}

// Update refreshes the passive contact list.
func (s *Sonar) Update(ctx *Context) {
	s.tick(ctx)
	if !s.On() {
		s.contacts = nil
		return
	}
	s.contacts = s.listen(ctx, s.cfg.PassiveRange*s.efficiency(), false)
}

func (s *Sonar) listen(ctx *Context, radius float64, active bool) []Contact {
	from := ctx.Sub.Position()
	var out []Contact
	for _, m := range ctx.Map.GetEntitiesAround(from, radius) {
		if m.ID() == ctx.Sub.ID() {
			continue
		}
		p := m.Polygon().Centroid()
		d := from.DistanceTo(p)
		if d > radius || !ctx.Map.LineOfSight(from, p) {
			continue
		}
		c := Contact{ID: m.ID(), X: p.X, Y: p.Y, Distance: d, Active: active}
		if l, ok := m.(interface{ Label() string }); ok {
			c.Label = l.Label()
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Sonar) View() View {
	return s.view(s, map[string]float64{
		"contacts": float64(len(s.contacts)),
		"pinged":   float64(len(s.pinged)),
		"echoes":   float64(len(s.echoes)),
		"pings":    float64(s.pings),
	})
}

// pingBehavior sweeps the walls once the ping has charged.
type pingBehavior struct{ s *Sonar }

func (p pingBehavior) Check(_ *Context, r *action.Reasons) { p.s.requirePower(r) }

func (p pingBehavior) Complete(ctx *Context) {
	s := p.s
	rays := s.cfg.Rays
	if rays <= 0 {
		rays = 1
	}
	reach := s.cfg.PingRange * s.efficiency()
	from := ctx.Sub.Position()
	s.echoes = s.echoes[:0]
	for i := 0; i < rays; i++ {
		a := 2 * math.Pi * float64(i) / float64(rays)
		hit, ok := ctx.Map.Raycast(from, from.Add(geom.FromPolar(a, reach)))
		if !ok {
			continue
		}
		s.echoes = append(s.echoes, Echo{X: hit.Point.X, Y: hit.Point.Y, Distance: hit.Distance})
	}
	s.pinged = s.listen(ctx, reach, true)
	s.pings++
	s.effects.Refresh(effect.Timed(effect.Echo, 2000, float64(len(s.echoes)), s.name))
	ctx.Log.Addf(ctx.Tick, s.name, "sub", "sonar", "ping", float64(len(s.pinged)),
		"%d echoes, %d contacts", len(s.echoes), len(s.pinged))
}
