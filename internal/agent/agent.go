// Package agent implements the AI-controlled maze agents: the lifecycle
// state machine, per-personality target selection, and the movement
// integrator that turns continuous intent into validated grid steps.
package agent

import (
	"mazebound/server/internal/collision"
	"mazebound/server/internal/grid"
)

// Agent pairs a controller with its movement integrator.
type Agent struct {
	ID         string
	Scale      float64
	controller *Controller
	mover      *Mover
}

// Config assembles an agent.
type Config struct {
	ID         string
	Scale      float64
	Speed      float64
	Controller ControllerConfig
}

// New builds an agent at its spawn cell, in the entering state.
func New(cfg Config) *Agent {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return &Agent{
		ID:         cfg.ID,
		Scale:      scale,
		controller: NewController(cfg.Controller),
		mover:      NewMover(cfg.Controller.Spawn, cfg.Speed),
	}
}

// Controller exposes the state machine for external triggers.
func (a *Agent) Controller() *Controller {
	return a.controller
}

// Mover exposes the movement integrator for position queries.
func (a *Agent) Mover() *Mover {
	return a.mover
}

// Pos returns the continuous position in grid units.
func (a *Agent) Pos() grid.Vec2 {
	return a.mover.Pos()
}

// Body returns the collision body for bounding-box tests.
func (a *Agent) Body() collision.Body {
	return collision.Body{Center: a.mover.Pos(), Scale: a.Scale}
}

// Update runs one tick: the AI decision first, then the movement
// integration consuming its direction. Returns the emitted direction, zero
// when the agent held position.
func (a *Agent) Update(dt float64, tracked TrackedAgent, col *collision.System) grid.Vec2 {
	desired, ok := a.controller.Update(dt, a.mover.Pos(), tracked)
	if !ok {
		desired = grid.Vec2{}
	}
	a.mover.Update(dt, desired, a.controller.SpeedFactor(), col)
	return desired
}

// Reset snaps the agent back to spawn conditions.
func (a *Agent) Reset() {
	a.controller.Reset()
	a.mover.Teleport(a.controller.spawn)
}

// Respawn revives a dead agent at its spawn cell.
func (a *Agent) Respawn() {
	if a.controller.State() != StateDead {
		return
	}
	a.mover.Teleport(a.controller.spawn)
	a.controller.Respawn()
}
