package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/mapgen"
	"github.com/Garsondee/Sub-Sense/internal/simlog"
	"github.com/Garsondee/Sub-Sense/internal/sub"
	"github.com/Garsondee/Sub-Sense/internal/world"
)

// Model is one running simulation.
type Model struct {
	cfg    Config
	rng    *rand.Rand
	ids    *entity.IDAllocator
	world  *world.Map
	gen    mapgen.Result
	sub    *sub.Sub
	fish   []*entity.Fish // id order
	plants []*entity.Plant
	log    *simlog.Log
	events *simlog.Ring

	tick  int
	now   float64
	kills int
}

// New generates the map and spawns the submarine, fish and plants. Any
// placement failure is returned as an error.
func New(cfg Config, opts ...Option) (*Model, error) {
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- game only
		ids:    entity.NewIDAllocator(1),
		log:    simlog.New(cfg.Verbose),
		events: simlog.NewRing(simlog.DefaultRingSize),
	}
	m.log.Mirror(m.events)

	w, res, err := mapgen.Generate(m.rng, cfg.Map)
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}
	m.world, m.gen = w, res
	m.log.Addf(0, "--", "world", "mapgen", "done", float64(res.Caves),
		"%d caves %d paths %d rocks, %d skipped", res.Caves, res.Paths, res.Rocks, res.Skipped)

	if err := m.spawnSub(); err != nil {
		return nil, err
	}
	if err := m.spawnFish(); err != nil {
		return nil, err
	}
	if err := m.spawnPlants(); err != nil {
		return nil, err
	}
	return m, nil
}

// largestCave returns the cave with the biggest area.
func (m *Model) largestCave() (world.Region, bool) {
	var best world.Region
	found := false
	for _, c := range m.world.Caves() {
		if !found || c.Shape.Area() > best.Shape.Area() {
			best, found = c, true
		}
	}
	return best, found
}

func (m *Model) spawnSub() error {
	cave, ok := m.largestCave()
	if !ok {
		return fmt.Errorf("spawn sub: %w: map has no caves", world.ErrNoPosition)
	}
	radius := math.Hypot(m.cfg.Hull.Length, m.cfg.Hull.Beam) / 2
	pos, err := m.world.RandomPositionIn(m.rng, cave, radius)
	if err != nil {
		return fmt.Errorf("spawn sub: %w", err)
	}
	s, err := sub.New(m.ids.Next(), pos, m.rng.Float64()*2*math.Pi, m.cfg.Hull, m.cfg.Loadout)
	if err != nil {
		return fmt.Errorf("spawn sub: %w", err)
	}
	m.sub = s
	m.world.AddEntity(s)
	m.log.Addf(0, "sub", "sub", "spawn", "sub", float64(s.ID()), "at (%.0f, %.0f) in cave %d", pos.X, pos.Y, cave.ID)
	return nil
}

func (m *Model) spawnFish() error {
	for i := 0; i < m.cfg.Fish; i++ {
		sp := m.cfg.Species[m.rng.Intn(len(m.cfg.Species))]
		radius := math.Hypot(sp.Length, sp.Beam) / 2
		pos, err := m.fishPosition(radius)
		if err != nil {
			return fmt.Errorf("spawn fish %d (%s): %w", i, sp.Name, err)
		}
		f := entity.NewFish(m.ids.Next(), sp, pos, m.rng.Float64()*2*math.Pi)
		m.fish = append(m.fish, f)
		m.world.AddEntity(f)
	}
	return nil
}

// fishPosition finds a free point outside the spawn clearance around the sub.
func (m *Model) fishPosition(radius float64) (geom.Point, error) {
	for i := 0; i < world.PlaceTries; i++ {
		p, err := m.world.RandomPosition(m.rng, radius)
		if err != nil {
			return p, err
		}
		if p.DistanceTo(m.sub.Position()) >= m.cfg.SpawnClearance {
			return p, nil
		}
	}
	return geom.Point{}, fmt.Errorf("%w: nothing %.0f away from the sub", world.ErrNoPosition, m.cfg.SpawnClearance)
}

func (m *Model) spawnPlants() error {
	for i := 0; i < m.cfg.Plants; i++ {
		pos, err := m.world.RandomPosition(m.rng, m.cfg.PlantSize)
		if err != nil {
			return fmt.Errorf("spawn plant %d: %w", i, err)
		}
		p := entity.NewPlant(m.ids.Next(), pos, m.cfg.PlantSize, m.cfg.PlantSamples)
		m.plants = append(m.plants, p)
		m.world.AddPlant(p)
	}
	return nil
}

// AddFish spawns a fish of sp at pos. It fails when pos is not free water.
func (m *Model) AddFish(sp entity.Species, pos geom.Point, orientation float64) (*entity.Fish, error) {
	radius := math.Hypot(sp.Length, sp.Beam) / 2
	if !m.world.IsFree(pos, radius) {
		return nil, fmt.Errorf("%w: (%.0f, %.0f) is blocked", world.ErrNoPosition, pos.X, pos.Y)
	}
	f := entity.NewFish(m.ids.Next(), sp, pos, orientation)
	m.fish = append(m.fish, f)
	m.world.AddEntity(f)
	return f, nil
}
