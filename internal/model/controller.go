package model

import (
	"sort"

	"github.com/Garsondee/Sub-Sense/internal/sub"
)

// Controller is the input snapshot for one tick. Pressed actions, cancels,
// the move request and the target selection are one-shot and cleared by
// Reset; held keys and values persist until changed.
type Controller struct {
	pressed  []string
	canceled []string
	held     map[string]bool
	values   map[string]float64
	move     *sub.Move
	target   *int
}

var _ sub.Controls = (*Controller)(nil)

// NewController returns an empty controller.
func NewController() *Controller {
	return &Controller{held: make(map[string]bool), values: make(map[string]float64)}
}

// Press requests the action with id this tick.
func (c *Controller) Press(id string) { c.pressed = append(c.pressed, id) }

// CancelAction asks for the action with id to be stopped this tick.
func (c *Controller) CancelAction(id string) { c.canceled = append(c.canceled, id) }

// Pressed returns the actions requested this tick, in press order.
func (c *Controller) Pressed() []string { return c.pressed }

// Canceled returns the actions to stop this tick, in order.
func (c *Controller) Canceled() []string { return c.canceled }

// SetHeld records whether key is held down.
func (c *Controller) SetHeld(key string, down bool) {
	if down {
		c.held[key] = true
		return
	}
	delete(c.held, key)
}

// Held reports whether key is held down.
func (c *Controller) Held(key string) bool { return c.held[key] }

// HeldKeys returns the held keys in sorted order.
func (c *Controller) HeldKeys() []string {
	out := make([]string, 0, len(c.held))
	for k := range c.held {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RequestMove asks for a subsystem to be moved on the equipment grid.
func (c *Controller) RequestMove(m sub.Move) { c.move = &m }

// Move returns the pending move request.
func (c *Controller) Move() (sub.Move, bool) {
	if c.move == nil {
		return sub.Move{}, false
	}
	return *c.move, true
}

// SelectTarget asks for the entity with id to become the weapon target.
func (c *Controller) SelectTarget(id int) { c.target = &id }

// Target returns the pending target selection.
func (c *Controller) Target() (int, bool) {
	if c.target == nil {
		return 0, false
	}
	return *c.target, true
}

// Value returns the stored value for key, or def when unset.
func (c *Controller) Value(key string, def float64) float64 {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// GetValue is Value.
func (c *Controller) GetValue(key string, def float64) float64 { return c.Value(key, def) }

// SetValue stores a continuous control value.
func (c *Controller) SetValue(key string, v float64) { c.values[key] = v }

// Reset clears the one-shot fields after a tick has consumed them.
func (c *Controller) Reset() {
	c.pressed = c.pressed[:0]
	c.canceled = c.canceled[:0]
	c.move = nil
	c.target = nil
}
