package action

// Group makes its members mutually exclusive: requesting one deactivates the
// others.
type Group[C any] struct {
	members []*Action[C]
}

// NewGroup returns a group holding the given actions.
func NewGroup[C any](members ...*Action[C]) *Group[C] {
	g := &Group[C]{}
	for _, m := range members {
		g.Add(m)
	}
	return g
}

// Add puts a into the group.
func (g *Group[C]) Add(a *Action[C]) {
	a.group = g
	g.members = append(g.members, a)
}

// Members returns the grouped actions in insertion order.
func (g *Group[C]) Members() []*Action[C] { return g.members }

// Engaged returns the first engaged member, or nil.
func (g *Group[C]) Engaged() *Action[C] {
	for _, m := range g.members {
		if m.Engaged() {
			return m
		}
	}
	return nil
}

func (g *Group[C]) deactivateOthers(keep *Action[C], ctx C) {
	for _, m := range g.members {
		if m != keep && m.Engaged() {
			m.deactivate(ctx)
		}
	}
}
