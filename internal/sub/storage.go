package sub

import (
	"fmt"
	"math"
	"sort"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/entity"
)

// Storage is the cargo hold. It pays material costs for actions and its
// arm collects samples from nearby plants.
type Storage struct {
	base
	cfg       StorageConfig
	materials []string // insertion order
	stock     map[string]int
	collect   *action.Action[*Context]
}

var _ action.Storage = (*Storage)(nil)

func newStorage(id int, cfg StorageConfig, op *action.OperatorToken, repairMs float64) *Storage {
	s := &Storage{cfg: cfg, stock: make(map[string]int)}
	s.init(id, KindStorage, cfg.Common, op, repairMs, nil)
	names := make([]string, 0, len(cfg.Inventory))
	for k := range cfg.Inventory {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		s.Put(k, cfg.Inventory[k])
	}
	s.collect = s.addAction(action.Options{ID: "collect", Kind: action.Progress, Duration: cfg.CollectMs}, collectBehavior{s})
	return s
}

func (s *Storage) Collect() *action.Action[*Context] { return s.collect }

// Count returns the stock of material.
func (s *Storage) Count(material string) int { return s.stock[material] }

// Take removes n of material. It takes nothing and returns false when the
// stock is short.
func (s *Storage) Take(material string, n int) bool {
	if n < 0 || s.stock[material] < n {
		return false
	}
	s.stock[material] -= n
	return true
}

// Put stores up to n of material within capacity and returns how many fit.
func (s *Storage) Put(material string, n int) int {
	if free := s.Free(); n > free {
		n = free
	}
	if n <= 0 {
		return 0
	}
	if _, ok := s.stock[material]; !ok {
		s.materials = append(s.materials, material)
	}
	s.stock[material] += n
	return n
}

// Used is the number of stored items.
func (s *Storage) Used() int {
	n := 0
	for _, m := range s.materials {
		n += s.stock[m]
	}
	return n
}

// Free is the remaining capacity.
func (s *Storage) Free() int { return s.cfg.Capacity - s.Used() }

// Inventory returns the stock in insertion order.
func (s *Storage) Inventory() []Item {
	out := make([]Item, 0, len(s.materials))
	for _, m := range s.materials {
		out = append(out, Item{Material: m, Count: s.stock[m]})
	}
	return out
}

// Item is one inventory line.
type Item struct {
	Material string `json:"material"`
	Count    int    `json:"count"`
}

func (s *Storage) Update(ctx *Context) { s.tick(ctx) }

func (s *Storage) View() View {
	v := s.view(s, map[string]float64{
		"capacity": float64(s.cfg.Capacity),
		"used":     float64(s.Used()),
	})
	for _, it := range s.Inventory() {
		v.Stats[fmt.Sprintf("item.%s", it.Material)] = float64(it.Count)
	}
	return v
}

// nearestPlant returns the closest plant with samples within reach.
func (s *Storage) nearestPlant(ctx *Context) *entity.Plant {
	from := ctx.Sub.Position()
	reach := s.cfg.CollectRange + ctx.Sub.Radius()
	var best *entity.Plant
	bestD := math.Inf(1)
	for _, m := range ctx.Map.GetPlantsAround(from, reach) {
		p, ok := m.(*entity.Plant)
		if !ok || p.Samples() <= 0 {
			continue
		}
		if d := from.DistanceTo(p.Position()); d <= reach && d < bestD {
			best, bestD = p, d
		}
	}
	return best
}

// collectBehavior harvests one sample per completion.
type collectBehavior struct{ s *Storage }

func (c collectBehavior) Check(ctx *Context, r *action.Reasons) {
	c.s.requirePower(r)
	if c.s.Free() <= 0 {
		r.Add("storage full")
	}
	if c.s.nearestPlant(ctx) == nil {
		r.Add("no plant in reach")
	}
}

func (c collectBehavior) Complete(ctx *Context) {
	p := c.s.nearestPlant(ctx)
	if p == nil {
		return
	}
	n := c.s.Put(Sample, p.Harvest(1))
	ctx.Log.Add(ctx.Tick, c.s.name, "sub", "action", "collect", p.Label(), float64(n))
}
