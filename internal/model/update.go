package model

import (
	"github.com/Garsondee/Sub-Sense/internal/entity"
	"github.com/Garsondee/Sub-Sense/internal/mapgen"
	"github.com/Garsondee/Sub-Sense/internal/simlog"
	"github.com/Garsondee/Sub-Sense/internal/sub"
	"github.com/Garsondee/Sub-Sense/internal/world"
)

func (m *Model) Config() Config           { return m.cfg }
func (m *Model) Map() *world.Map          { return m.world }
func (m *Model) MapResult() mapgen.Result { return m.gen }
func (m *Model) Sub() *sub.Sub            { return m.sub }
func (m *Model) Fish() []*entity.Fish     { return m.fish }
func (m *Model) Plants() []*entity.Plant  { return m.plants }
func (m *Model) Log() *simlog.Log         { return m.log }
func (m *Model) Events() *simlog.Ring     { return m.events }
func (m *Model) Tick() int                { return m.tick }
func (m *Model) Now() float64             { return m.now }
func (m *Model) Kills() int               { return m.kills }

// UpdateState advances the simulation by deltaMs: controller input, the
// submarine's subsystems and hull physics, then every fish, their attacks on
// the hull and the removal of dead fish. A nil ctl means no input. The
// caller resets the controller's one-shot fields afterwards.
func (m *Model) UpdateState(deltaMs float64, ctl *Controller) {
	if ctl == nil {
		ctl = NewController()
	}
	m.now += deltaMs
	sctx := &sub.Context{
		Sub:      m.sub,
		Map:      m.world,
		Rng:      m.rng,
		Log:      m.log,
		Controls: ctl,
		DeltaMs:  deltaMs,
		Tick:     m.tick,
		Now:      m.now,
	}
	m.applyInput(sctx, ctl)

	m.sub.Update(sctx)
	m.world.UpdateEntity(m.sub)

	ectx := &entity.Context{
		Map:       m.world,
		Rng:       m.rng,
		Log:       m.log,
		DeltaMs:   deltaMs,
		Tick:      m.tick,
		Now:       m.now,
		SubID:     m.sub.ID(),
		SubPos:    m.sub.Position(),
		SubRadius: m.sub.Radius(),
	}
	for _, f := range m.fish {
		f.Update(ectx)
		m.world.UpdateEntity(f)
	}
	for _, a := range ectx.Attacks {
		m.sub.TakeAttack(sctx, a)
	}
	m.sub.EnforcePower(sctx)
	m.removeDead()
	m.tick++
}

func (m *Model) applyInput(ctx *sub.Context, ctl *Controller) {
	if mv, ok := ctl.Move(); ok {
		m.sub.RequestMove(mv)
	}
	if id, ok := ctl.Target(); ok {
		m.sub.RequestTarget(id)
	}
	for _, id := range ctl.Canceled() {
		m.sub.Cancel(ctx, id)
	}
	for _, id := range ctl.Pressed() {
		m.sub.Request(ctx, id)
	}
}

// removeDead drops dead fish from the map, keeping id order.
func (m *Model) removeDead() {
	alive := m.fish[:0]
	for _, f := range m.fish {
		if f.Alive() {
			alive = append(alive, f)
			continue
		}
		m.world.RemoveEntity(f.ID())
		m.kills++
		m.log.Add(m.tick, f.Label(), "fish", "fish", "death", f.Species().Name, 0)
	}
	for i := len(alive); i < len(m.fish); i++ {
		m.fish[i] = nil
	}
	m.fish = alive
}

// FishByID returns the living fish with id.
func (m *Model) FishByID(id int) (*entity.Fish, bool) {
	for _, f := range m.fish {
		if f.ID() == id {
			return f, true
		}
	}
	return nil, false
}

// RunTicks advances n fixed-length ticks with ctl, resetting its one-shot
// fields after each.
func (m *Model) RunTicks(n int, ctl *Controller) {
	if ctl == nil {
		ctl = NewController()
	}
	for i := 0; i < n; i++ {
		m.UpdateState(m.cfg.TickMs, ctl)
		ctl.Reset()
	}
}

// RunUntil advances up to maxTicks, stopping early once done returns true.
// It returns the tick at which done was satisfied, or -1.
func (m *Model) RunUntil(done func(*Model) bool, maxTicks int, ctl *Controller) int {
	if ctl == nil {
		ctl = NewController()
	}
	for i := 0; i < maxTicks; i++ {
		m.UpdateState(m.cfg.TickMs, ctl)
		ctl.Reset()
		if done(m) {
			return m.tick
		}
	}
	return -1
}
