package main

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/model"
	"github.com/Garsondee/Sub-Sense/internal/sub"
)

const (
	cruiseThrottle = 0.5
	lookahead      = 260.0
	feelerAngle    = 0.6 // rad either side of the bow
	pingEvery      = 150 // ticks
	lowFuel        = 0.15
)

// pilot is a scripted crew for headless runs: it cruises, feels for walls
// with three rays, pings on a schedule, hunts aggressive contacts and keeps
// the boat patched and fuelled.
type pilot struct {
	ctl *model.Controller
}

func newPilot() *pilot { return &pilot{ctl: model.NewController()} }

// steerChoice picks the held steering key from the free distance on each
// side. The empty string means keep straight.
func steerChoice(ahead, left, right float64) string {
	if ahead >= lookahead {
		return ""
	}
	if left > right {
		return sub.SteerLeftKey
	}
	return sub.SteerRightKey
}

// onTarget reports whether the crosshair covers any target window.
func onTarget(c sub.Window, targets []sub.Window) bool {
	for _, t := range targets {
		if c.Overlaps(t) {
			return true
		}
	}
	return false
}

// freeDistance casts a ray of lookahead length at heading angle a.
func freeDistance(m *model.Model, from geom.Point, a float64) float64 {
	hit, ok := m.Map().Raycast(from, from.Add(geom.FromPolar(a, lookahead)))
	if !ok {
		return lookahead
	}
	return hit.Distance
}

// decide fills the controller for the coming tick.
func (p *pilot) decide(m *model.Model) *model.Controller {
	s := m.Sub()
	c := p.ctl
	c.SetValue(sub.SteeringThrottleKey, cruiseThrottle)

	pos, o := s.Position(), s.Body().Orientation()
	key := steerChoice(
		freeDistance(m, pos, o),
		freeDistance(m, pos, o-feelerAngle),
		freeDistance(m, pos, o+feelerAngle),
	)
	c.SetHeld(sub.SteerLeftKey, key == sub.SteerLeftKey)
	c.SetHeld(sub.SteerRightKey, key == sub.SteerRightKey)

	if sn := s.Sonars(); len(sn) > 0 && m.Tick()%pingEvery == 0 {
		c.Press(sn[0].Ping().ID())
	}
	if s.Target() == nil {
		if id, ok := p.nearestThreat(m); ok {
			c.SelectTarget(id)
		}
	}
	if ws := s.Weapons(); len(ws) > 0 {
		p.fight(s, ws[0])
	}
	if s.Leaks() > 0 && !s.Patch().Engaged() {
		c.Press(s.Patch().ID())
	}
	for _, r := range s.Reactors() {
		if r.FuelLevel() < lowFuel && !r.Refuel().Engaged() {
			c.Press(r.Refuel().ID())
		}
	}
	for _, b := range s.Batteries() {
		if s.PowerBalance() < 0 && !b.Discharging() && b.On() && b.Charge() > 0 {
			c.Press(b.Discharge().ID())
		}
	}
	return c
}

func (p *pilot) fight(s *sub.Sub, w *sub.Weapon) {
	switch {
	case w.Ammo() == 0:
		if !w.Reload().Engaged() && s.Count(sub.Torpedo) > 0 {
			p.ctl.Press(w.Reload().ID())
		}
	case s.Target() == nil:
	case !w.Aim().Engaged():
		p.ctl.Press(w.Aim().ID())
	case onTarget(w.Crosshair(), w.Targets()):
		p.ctl.Press(w.Shoot().ID())
	}
}

// nearestThreat is the closest heard contact whose species attacks.
func (p *pilot) nearestThreat(m *model.Model) (int, bool) {
	best, id := math.Inf(1), 0
	for _, sn := range m.Sub().Sonars() {
		for _, c := range append(sn.Contacts(), sn.Pinged()...) {
			f, ok := m.FishByID(c.ID)
			if !ok || !f.Species().Aggressive {
				continue
			}
			if c.Distance < best {
				best, id = c.Distance, c.ID
			}
		}
	}
	return id, id != 0
}
