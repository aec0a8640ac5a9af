// Package entity holds the movable and static things living in the cave:
// fish with their planning agents and plants, plus the shared identity and
// per-tick context types.
package entity

import (
	"math/rand"

	"github.com/Garsondee/Sub-Sense/internal/effect"
	"github.com/Garsondee/Sub-Sense/internal/geom"
	"github.com/Garsondee/Sub-Sense/internal/physics"
	"github.com/Garsondee/Sub-Sense/internal/simlog"
	"github.com/Garsondee/Sub-Sense/internal/world"
)

// Kind identifies the entity family.
type Kind int

const (
	KindSub Kind = iota
	KindFish
	KindPlant
)

func (k Kind) String() string {
	switch k {
	case KindSub:
		return "sub"
	case KindFish:
		return "fish"
	case KindPlant:
		return "plant"
	default:
		return "unknown"
	}
}

// IDAllocator hands out entity ids for one simulation.
type IDAllocator struct {
	next int
}

// NewIDAllocator starts counting at start.
func NewIDAllocator(start int) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns a fresh id.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the id the next call to Next will hand out.
func (a *IDAllocator) Peek() int { return a.next }

// Base is the identity, body and effects shared by every entity.
type Base struct {
	id      int
	kind    Kind
	label   string
	body    *physics.Body
	effects effect.Bag
}

// NewBase wires an identity to a body.
func NewBase(id int, kind Kind, label string, body *physics.Body) Base {
	return Base{id: id, kind: kind, label: label, body: body}
}

func (b *Base) ID() int               { return b.id }
func (b *Base) Kind() Kind            { return b.kind }
func (b *Base) Label() string         { return b.label }
func (b *Base) Body() *physics.Body   { return b.body }
func (b *Base) Effects() *effect.Bag  { return &b.effects }
func (b *Base) Position() geom.Point  { return b.body.Position() }
func (b *Base) Polygon() geom.Polygon { return b.body.Polygon() }
func (b *Base) Radius() float64       { return b.body.Radius() }

// Attack is a bite or ram aimed at the submarine, applied by the model.
type Attack struct {
	From   int
	Label  string
	Damage float64
	Point  geom.Point
}

// Context is the transient per-tick view an entity update works against.
// It is rebuilt every tick and never stored.
type Context struct {
	Map     *world.Map
	Rng     *rand.Rand
	Log     *simlog.Log
	DeltaMs float64
	Tick    int
	Now     float64 // ms since the simulation started

	SubID     int
	SubPos    geom.Point
	SubRadius float64

	Attacks []Attack
}

// Attack queues an attack on the submarine.
func (c *Context) Attack(a Attack) { c.Attacks = append(c.Attacks, a) }
