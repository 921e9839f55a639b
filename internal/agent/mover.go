package agent

import (
	"math"

	"mazebound/server/internal/collision"
	"mazebound/server/internal/grid"
)

// defaultSpeed is the base movement rate in cells per second.
const defaultSpeed = 4.0

// Mover discretizes the controller's continuous intent into grid-aligned
// steps and interpolates between cells. Steps are validated through the
// collision system exactly once, at commit time; mid-step the agent is
// locked onto a transition that was already proven legal.
type Mover struct {
	cell       grid.Point
	stepTarget grid.Point
	dir        grid.Point
	fraction   float64
	speed      float64
	moving     bool
}

// NewMover places a stationary mover on the given cell.
func NewMover(cell grid.Point, speed float64) *Mover {
	if speed <= 0 {
		speed = defaultSpeed
	}
	return &Mover{cell: cell, stepTarget: cell, speed: speed}
}

// Cell returns the last committed grid position.
func (m *Mover) Cell() grid.Point {
	return m.cell
}

// StepTarget returns the destination cell of the in-flight step, equal to
// Cell when stationary.
func (m *Mover) StepTarget() grid.Point {
	return m.stepTarget
}

// Fraction returns interpolation progress in [0,1).
func (m *Mover) Fraction() float64 {
	return m.fraction
}

// Direction returns the committed discrete step direction, zero when
// stationary.
func (m *Mover) Direction() grid.Point {
	if !m.moving {
		return grid.Point{}
	}
	return m.dir
}

// Pos returns the continuous position, interpolated between the committed
// cell and the in-flight step target.
func (m *Mover) Pos() grid.Vec2 {
	from := m.cell.Center()
	if !m.moving {
		return from
	}
	to := m.stepTarget.Center()
	return grid.Vec2{
		X: from.X + (to.X-from.X)*m.fraction,
		Z: from.Z + (to.Z-from.Z)*m.fraction,
	}
}

// Teleport snaps the mover to a cell and cancels any in-flight step.
func (m *Mover) Teleport(cell grid.Point) {
	m.cell = cell
	m.stepTarget = cell
	m.fraction = 0
	m.moving = false
	m.dir = grid.Point{}
}

// DominantAxisStep reduces a continuous direction to a single axis-aligned
// step: whichever of |x|,|z| is larger wins, and exact ties go to the
// horizontal axis. This tie-break is load-bearing and pinned by tests.
func DominantAxisStep(v grid.Vec2) grid.Point {
	if v.X == 0 && v.Z == 0 {
		return grid.Point{}
	}
	if math.Abs(v.X) >= math.Abs(v.Z) {
		if v.X > 0 {
			return grid.DirRight
		}
		return grid.DirLeft
	}
	if v.Z > 0 {
		return grid.DirDown
	}
	return grid.DirUp
}

// Update performs the single integration step for this tick: commit a new
// validated step when idle, then advance the interpolation fraction, and at
// a cell boundary either continue with a freshly validated step or stop.
func (m *Mover) Update(dt float64, desired grid.Vec2, speedFactor float64, col *collision.System) {
	if speedFactor <= 0 {
		speedFactor = 1
	}

	if !m.moving {
		if !m.tryCommit(desired, col) {
			return
		}
	}

	m.fraction += m.speed * speedFactor * dt
	for m.fraction >= 1 {
		m.fraction -= 1
		m.cell = m.stepTarget
		if !m.tryCommit(desired, col) {
			m.fraction = 0
			return
		}
	}
}

// tryCommit validates and commits one step from the current cell toward the
// desired direction, falling back to the previous direction when the intent
// has gone silent mid-corridor.
func (m *Mover) tryCommit(desired grid.Vec2, col *collision.System) bool {
	step := DominantAxisStep(desired)
	if step.IsZero() {
		step = m.dir
	}
	if step.IsZero() {
		m.stop()
		return false
	}
	resolved := col.ResolveStep(m.cell, step)
	if resolved.IsZero() && step != m.dir && !m.dir.IsZero() {
		// The preferred axis is blocked; keep rolling on the old heading
		// if that corridor is still open.
		resolved = col.ResolveStep(m.cell, m.dir)
	}
	if resolved.IsZero() {
		m.stop()
		return false
	}
	m.dir = resolved
	m.stepTarget = m.cell.Add(resolved)
	m.moving = true
	return true
}

func (m *Mover) stop() {
	m.stepTarget = m.cell
	m.moving = false
	m.fraction = 0
	m.dir = grid.Point{}
}
