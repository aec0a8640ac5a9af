// Package model runs the whole simulation: it owns the map, the submarine,
// the fish and the plants, applies one tick of controller input at a time
// and produces a plain view snapshot for renderers.
package model

import (
	"errors"
	"fmt"

	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/mapgen"
	"github.com/Garsondee/Sub-Sense/internal/sub"
)

// ErrInvalidConfig is returned by New for configurations it cannot run.
var ErrInvalidConfig = errors.New("invalid model config")

// Config holds every parameter of a run.
type Config struct {
	Seed    int64
	Verbose bool
	TickMs  float64

	Map mapgen.Config

	Fish           int
	Species        []entity.Species
	SpawnClearance float64 // fish spawn at least this far from the sub

	Plants       int
	PlantSize    float64
	PlantSamples int

	Hull    sub.HullConfig
	Loadout sub.Loadout
}

// DefaultConfig returns the configuration the game runs with.
func DefaultConfig() Config {
	return Config{
		Seed:           1,
		TickMs:         1000.0 / 30,
		Map:            mapgen.DefaultConfig(),
		Fish:           24,
		Species:        entity.DefaultSpecies(),
		SpawnClearance: 500,
		Plants:         16,
		PlantSize:      14,
		PlantSamples:   3,
		Hull:           sub.DefaultHull(),
		Loadout:        sub.DefaultLoadout(),
	}
}

// Validate reports the first parameter New cannot work with. Map and
// loadout problems are reported by their own packages.
func (c Config) Validate() error {
	switch {
	case c.TickMs <= 0:
		return fmt.Errorf("%w: tick length %.1f ms", ErrInvalidConfig, c.TickMs)
	case c.Fish < 0 || c.Plants < 0:
		return fmt.Errorf("%w: negative population", ErrInvalidConfig)
	case c.Fish > 0 && len(c.Species) == 0:
		return fmt.Errorf("%w: fish requested without species", ErrInvalidConfig)
	case c.Plants > 0 && (c.PlantSize <= 0 || c.PlantSamples <= 0):
		return fmt.Errorf("%w: plant size %.1f samples %d", ErrInvalidConfig, c.PlantSize, c.PlantSamples)
	case c.SpawnClearance < 0:
		return fmt.Errorf("%w: negative spawn clearance", ErrInvalidConfig)
	}
	return nil
}

// Option adjusts a Config before the model is built.
type Option func(*Config)

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithMapSize sets the playfield dimensions.
func WithMapSize(w, h float64) Option {
	return func(c *Config) {
		c.Map.Width = w
		c.Map.Height = h
	}
}

// WithMapConfig replaces the whole map generation config.
func WithMapConfig(mc mapgen.Config) Option {
	return func(c *Config) { c.Map = mc }
}

// WithFish sets the number of fish spawned.
func WithFish(n int) Option {
	return func(c *Config) { c.Fish = n }
}

// WithSpecies replaces the species table fish are drawn from.
func WithSpecies(sp ...entity.Species) Option {
	return func(c *Config) { c.Species = sp }
}

// WithPlants sets the number of plants spawned.
func WithPlants(n int) Option {
	return func(c *Config) { c.Plants = n }
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) Option {
	return func(c *Config) { c.Verbose = v }
}

// WithLoadout replaces the submarine's equipment.
func WithLoadout(l sub.Loadout) Option {
	return func(c *Config) { c.Loadout = l }
}

// WithHull replaces the submarine's hull.
func WithHull(h sub.HullConfig) Option {
	return func(c *Config) { c.Hull = h }
}
