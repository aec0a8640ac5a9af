package sub

import (
	"math"

	"github.com/Garsondee/Sub-Sense/internal/action"
)

// Steering sets the sub's throttle and turning direction from the
// controller. With no turn held it damps residual rotation on its own.
type Steering struct {
	base
	cfg           SteeringConfig
	left          *action.Action[*Context]
	right         *action.Action[*Context]
	group         *action.Group[*Context]
	throttle      float64
	direction     float64
	autoCentering bool
}

func newSteering(id int, cfg SteeringConfig, op *action.OperatorToken, repairMs float64) *Steering {
	s := &Steering{cfg: cfg}
	s.init(id, KindSteering, cfg.Common, op, repairMs, nil)
	s.left = s.addAction(action.Options{ID: "left", Kind: action.Hold}, holdBehavior{&s.base})
	s.right = s.addAction(action.Options{ID: "right", Kind: action.Hold}, holdBehavior{&s.base})
	s.group = action.NewGroup(s.left, s.right)
	return s
}

func (s *Steering) Throttle() float64               { return s.throttle }
func (s *Steering) Direction() float64              { return s.direction }
func (s *Steering) AutoCentering() bool             { return s.autoCentering }
func (s *Steering) Left() *action.Action[*Context]  { return s.left }
func (s *Steering) Right() *action.Action[*Context] { return s.right }

// Update reads throttle and held turn keys and writes them to the sub.
func (s *Steering) Update(ctx *Context) {
	s.tick(ctx)
	env := ctx.env()
	left, right := ctx.held(SteerLeftKey), ctx.held(SteerRightKey)
	switch {
	case left && !right:
		s.left.Request(env, ctx)
	case right && !left:
		s.right.Request(env, ctx)
	default:
		s.left.Release(ctx)
		s.right.Release(ctx)
	}

	s.autoCentering = false
	if !s.On() {
		s.throttle, s.direction = 0, 0
		ctx.Sub.setHelm(0, 0)
		return
	}
	s.throttle = clamp(ctx.value(SteeringThrottleKey, s.throttle), -1, 1)
	switch s.group.Engaged() {
	case s.left:
		s.direction = -1
	case s.right:
		s.direction = 1
	default:
		s.direction = 0
		w := ctx.Sub.Body().AngularVelocity()
		if math.Abs(w) > s.cfg.AutoCenterThreshold {
			s.direction = -math.Copysign(1, w)
			s.autoCentering = true
		}
	}
	s.direction *= s.efficiency()
	ctx.Sub.setHelm(s.throttle, s.direction)
}

func (s *Steering) View() View {
	return s.view(s, map[string]float64{
		"throttle":      s.throttle,
		"direction":     s.direction,
		"autoCentering": boolf(s.autoCentering),
	})
}

// holdBehavior gates a held control on the unit being powered.
type holdBehavior struct{ b *base }

func (h holdBehavior) Check(_ *Context, r *action.Reasons) { h.b.requirePower(r) }
func (h holdBehavior) Complete(*Context)                   {}
