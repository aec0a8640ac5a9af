// Package mapgen builds a cave map from a seeded random source: caves of
// several size tiers, paths joining them, and a rock field filling the rest.
package mapgen

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for configurations that cannot produce a map.
var ErrInvalidConfig = errors.New("invalid map config")

// CaveTier describes one size class of caves.
type CaveTier struct {
	Name        string
	Count       int
	MinSize     float64 // semi-major axis range
	MaxSize     float64
	Corners     int
	MinDistance float64 // clearance kept to every earlier cave
}

// Config holds every map generation parameter.
type Config struct {
	Width      float64
	Height     float64
	WallMargin float64 // caves keep this far from the map edge

	Tiers []CaveTier

	PathMinWidth float64
	PathMaxWidth float64
	PathJitter   float64 // added to candidate distances when growing paths

	RockSpacing   float64
	RockMinRadius float64
	RockMaxRadius float64
	RockCorners   int

	BorderThickness float64
	PlaceAttempts   int
}

// DefaultConfig returns the map used by the game.
func DefaultConfig() Config {
	return Config{
		Width:      4000,
		Height:     3000,
		WallMargin: 120,
		Tiers: []CaveTier{
			{Name: "large", Count: 2, MinSize: 380, MaxSize: 520, Corners: 14, MinDistance: 260},
			{Name: "medium", Count: 4, MinSize: 220, MaxSize: 320, Corners: 11, MinDistance: 180},
			{Name: "small", Count: 6, MinSize: 110, MaxSize: 170, Corners: 8, MinDistance: 140},
		},
		PathMinWidth:    90,
		PathMaxWidth:    150,
		PathJitter:      200,
		RockSpacing:     70,
		RockMinRadius:   18,
		RockMaxRadius:   38,
		RockCorners:     6,
		BorderThickness: 120,
		PlaceAttempts:   100,
	}
}

// Validate reports the first parameter that makes generation impossible.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: map size %.0fx%.0f", ErrInvalidConfig, c.Width, c.Height)
	case c.WallMargin < 0:
		return fmt.Errorf("%w: negative wall margin", ErrInvalidConfig)
	case len(c.Tiers) == 0:
		return fmt.Errorf("%w: no cave tiers", ErrInvalidConfig)
	case c.PathMinWidth <= 0 || c.PathMaxWidth < c.PathMinWidth:
		return fmt.Errorf("%w: path width range [%.0f, %.0f]", ErrInvalidConfig, c.PathMinWidth, c.PathMaxWidth)
	case c.PathJitter < 0:
		return fmt.Errorf("%w: negative path jitter", ErrInvalidConfig)
	case c.RockSpacing <= 0:
		return fmt.Errorf("%w: rock spacing must be positive", ErrInvalidConfig)
	case c.RockMinRadius <= 0 || c.RockMaxRadius < c.RockMinRadius:
		return fmt.Errorf("%w: rock radius range [%.0f, %.0f]", ErrInvalidConfig, c.RockMinRadius, c.RockMaxRadius)
	case c.RockCorners < 3:
		return fmt.Errorf("%w: rocks need at least 3 corners", ErrInvalidConfig)
	case c.PlaceAttempts <= 0:
		return fmt.Errorf("%w: place attempts must be positive", ErrInvalidConfig)
	}
	total := 0
	for _, t := range c.Tiers {
		if t.Count < 0 || t.Corners < 3 || t.MinSize <= 0 || t.MaxSize < t.MinSize || t.MinDistance < 0 {
			return fmt.Errorf("%w: tier %q", ErrInvalidConfig, t.Name)
		}
		total += t.Count
	}
	if total == 0 {
		return fmt.Errorf("%w: tiers request no caves", ErrInvalidConfig)
	}
	return nil
}
