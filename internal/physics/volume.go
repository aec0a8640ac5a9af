// Package physics integrates rigid bodies moving through water: thrust,
// quadratic drag, rotation and bounded sliding against cave walls.
package physics

import "math"

// Volume describes the hull shape a body presents to the water.
type Volume struct {
	Length float64 // along the heading
	Beam   float64 // across the heading
	Mass   float64
	Drag   float64 // drag coefficient
}

// FrontSection is the area presented when moving along the heading.
func (v Volume) FrontSection() float64 { return v.Beam }

// SideSection is the area presented when moving sideways.
func (v Volume) SideSection() float64 { return v.Length }

// Section blends the front and side sections for an angle of attack alpha.
func (v Volume) Section(alpha float64) float64 {
	return v.FrontSection()*math.Abs(math.Cos(alpha)) + v.SideSection()*math.Abs(math.Sin(alpha))
}

// Inertia is the moment of inertia of a uniform rectangle about its centre.
func (v Volume) Inertia() float64 {
	return v.Mass * (v.Length*v.Length + v.Beam*v.Beam) / 12
}

// TerminalSpeed is the speed at which drag along the heading balances force.
func (v Volume) TerminalSpeed(force float64) float64 {
	k := 0.5 * WaterDensity * v.Drag * v.FrontSection()
	if k <= 0 || force <= 0 {
		return 0
	}
	return math.Sqrt(force / k)
}
