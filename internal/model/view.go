package model

import (
	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/sub"
)

// eventLines is how many recent events a view carries.
const eventLines = 12

// View is the plain, JSON-serialisable snapshot of a model.
type View struct {
	Tick   int                `json:"tick"`
	Now    float64            `json:"now"`
	Seed   int64              `json:"seed"`
	Map    MapView            `json:"map"`
	Sub    sub.ViewState      `json:"sub"`
	Fish   []entity.View      `json:"fish"`
	Plants []entity.PlantView `json:"plants"`
	Kills  int                `json:"kills"`
	Events []string           `json:"events,omitempty"`
}

// MapView summarises the generated map.
type MapView struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Caves     int     `json:"caves"`
	Paths     int     `json:"paths"`
	Rocks     int     `json:"rocks"`
	Skipped   int     `json:"skipped"`
	Obstacles int     `json:"obstacles"`
}

// ToViewState returns the plain snapshot of m.
func (m *Model) ToViewState() View {
	b := m.world.Bounds()
	v := View{
		Tick: m.tick,
		Now:  m.now,
		Seed: m.cfg.Seed,
		Map: MapView{
			Width:     b.Width(),
			Height:    b.Height(),
			Caves:     m.gen.Caves,
			Paths:     m.gen.Paths,
			Rocks:     m.gen.Rocks,
			Skipped:   m.gen.Skipped,
			Obstacles: len(m.world.Obstacles()),
		},
		Sub:    m.sub.ToViewState(),
		Fish:   make([]entity.View, 0, len(m.fish)),
		Plants: make([]entity.PlantView, 0, len(m.plants)),
		Kills:  m.kills,
	}
	for _, f := range m.fish {
		v.Fish = append(v.Fish, f.View())
	}
	for _, p := range m.plants {
		v.Plants = append(v.Plants, p.View())
	}
	for _, e := range m.events.Last(eventLines) {
		v.Events = append(v.Events, e.String())
	}
	return v
}
