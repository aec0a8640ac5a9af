package entity

import (
	"fmt"

	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/physics"
)

// Plant is a static growth the submarine can harvest samples from.
type Plant struct {
	Base
	size    float64
	samples int
}

// NewPlant places a plant of the given size holding samples.
func NewPlant(id int, pos geom.Point, size float64, samples int) *Plant {
	body := physics.NewBody(pos, 0, physics.Volume{Length: size, Beam: size, Mass: 1})
	return &Plant{
		Base:    NewBase(id, KindPlant, fmt.Sprintf("P%d", id), body),
		size:    size,
		samples: samples,
	}
}

func (p *Plant) Size() float64 { return p.size }
func (p *Plant) Samples() int  { return p.samples }

// Harvest removes up to n samples and returns how many were taken.
func (p *Plant) Harvest(n int) int {
	if n > p.samples {
		n = p.samples
	}
	if n < 0 {
		n = 0
	}
	p.samples -= n
	return n
}

// PlantView is the plain snapshot of a plant.
type PlantView struct {
	ID      int     `json:"id"`
	Label   string  `json:"label"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Samples int     `json:"samples"`
}

// View returns the plain snapshot of p.
func (p *Plant) View() PlantView {
	pos := p.Position()
	return PlantView{ID: p.id, Label: p.label, X: pos.X, Y: pos.Y, Size: p.size, Samples: p.samples}
}
