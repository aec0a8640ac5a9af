// Package sub models the player's submarine: a hull body driven by a grid of
// independently powered subsystems whose power balance, damage and actions
// are resolved once per tick.
package sub

import (
	"math/rand"

	"github.com/Garsondee/Sub-Sense/internal/action"
	"github.com/Garsondee/Sub-Sense/internal/simlog"
	"github.com/Garsondee/Sub-Sense/internal/world"
)

// Control keys read from the controller's value store.
const (
	ReactorControlKey   = "reactor.control"
	SteeringThrottleKey = "steering.throttle"
	SteerLeftKey        = "left"
	SteerRightKey       = "right"
)

// Controls is the continuous input surface the subsystems read.
type Controls interface {
	Value(key string, def float64) float64
	SetValue(key string, v float64)
	Held(key string) bool
}

// Context is the transient per-tick view handed to the sub and its
// subsystems. It is rebuilt every tick and never stored.
type Context struct {
	Sub      *Sub
	Map      *world.Map
	Rng      *rand.Rand
	Log      *simlog.Log
	Controls Controls
	DeltaMs  float64
	Tick     int
	Now      float64
}

func (c *Context) value(key string, def float64) float64 {
	if c.Controls == nil {
		return def
	}
	return c.Controls.Value(key, def)
}

func (c *Context) setValue(key string, v float64) {
	if c.Controls != nil {
		c.Controls.SetValue(key, v)
	}
}

func (c *Context) held(key string) bool {
	return c.Controls != nil && c.Controls.Held(key)
}

// env is the action environment for this tick.
func (c *Context) env() action.Env {
	var st action.Storage
	if c.Sub != nil {
		st = c.Sub
	}
	return action.Env{DeltaMs: c.DeltaMs, Storage: st}
}
