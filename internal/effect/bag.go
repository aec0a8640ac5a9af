package effect

// Bag holds an owner's active effects in insertion order.
type Bag struct {
	effects []Effect
}

// Add appends e.
func (b *Bag) Add(e Effect) { b.effects = append(b.effects, e) }

// Refresh replaces the first effect with the same kind and source, or adds e.
func (b *Bag) Refresh(e Effect) {
	for i := range b.effects {
		if b.effects[i].Kind == e.Kind && b.effects[i].Source == e.Source {
			b.effects[i] = e
			return
		}
	}
	b.Add(e)
}

// Remove drops every effect of kind k and returns how many were removed.
func (b *Bag) Remove(k Kind) int {
	kept := b.effects[:0]
	n := 0
	for _, e := range b.effects {
		if e.Kind == k {
			n++
			continue
		}
		kept = append(kept, e)
	}
	b.effects = kept
	return n
}

// RemoveOne drops the oldest effect of kind k.
func (b *Bag) RemoveOne(k Kind) (Effect, bool) {
	for i, e := range b.effects {
		if e.Kind == k {
			b.effects = append(b.effects[:i], b.effects[i+1:]...)
			return e, true
		}
	}
	return Effect{}, false
}

// Has reports whether any effect of kind k is active.
func (b *Bag) Has(k Kind) bool {
	_, ok := b.Get(k)
	return ok
}

// Get returns the oldest effect of kind k.
func (b *Bag) Get(k Kind) (Effect, bool) {
	for _, e := range b.effects {
		if e.Kind == k {
			return e, true
		}
	}
	return Effect{}, false
}

// Count returns the number of effects of kind k.
func (b *Bag) Count(k Kind) int {
	n := 0
	for _, e := range b.effects {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Sum adds up the magnitudes of every effect of kind k.
func (b *Bag) Sum(k Kind) float64 {
	s := 0.0
	for _, e := range b.effects {
		if e.Kind == k {
			s += e.Magnitude
		}
	}
	return s
}

// Len returns the number of active effects.
func (b *Bag) Len() int { return len(b.effects) }

// All returns a copy of the active effects.
func (b *Bag) All() []Effect {
	out := make([]Effect, len(b.effects))
	copy(out, b.effects)
	return out
}

// Update counts timed effects down by deltaMs and returns the ones that
// expired, in insertion order. The owner reacts to the returned list.
func (b *Bag) Update(deltaMs float64) []Effect {
	var expired []Effect
	kept := b.effects[:0]
	for _, e := range b.effects {
		if !e.Permanent() {
			e.Remaining -= deltaMs
			if e.Remaining <= 0 {
				e.Remaining = 0
				expired = append(expired, e)
				continue
			}
		}
		kept = append(kept, e)
	}
	b.effects = kept
	return expired
}

// Views returns snapshots of every active effect.
func (b *Bag) Views() []View {
	out := make([]View, 0, len(b.effects))
	for _, e := range b.effects {
		out = append(out, e.View())
	}
	return out
}
