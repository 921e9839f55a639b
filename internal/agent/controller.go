package agent

import (
	"math/rand"

	"mazebound/server/internal/grid"
	"mazebound/server/internal/path"
)

// State is the single authoritative lifecycle state of an agent. Display
// styling derives from it through read-only projections; there is no second
// state enum to keep in sync.
type State uint8

const (
	StateEntering State = iota
	StateScatter
	StateChase
	StateFrightened
	StateDead
)

func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateScatter:
		return "scatter"
	case StateChase:
		return "chase"
	case StateFrightened:
		return "frightened"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

const (
	// frightenedDuration is fixed; expiry reverts to chase regardless of the
	// state that was interrupted.
	frightenedDuration = 10.0

	// enteringExitRadius is the Euclidean distance to the maze center below
	// which the one-time entering bootstrap hands over to scatter.
	enteringExitRadius = 2.0

	// waypointReachedRadius advances the route to its next waypoint.
	waypointReachedRadius = 0.5

	// targetMovedTolerance invalidates a route when the planning target has
	// drifted this far from where it was when the route was computed.
	targetMovedTolerance = 0.5

	// nearestSearchRadius caps the Manhattan ring expansion around targets
	// that land in walls or out of bounds.
	nearestSearchRadius = 8
)

// DefaultModeSchedule holds the cumulative timestamps (seconds) at which the
// global mode flips, starting in scatter. Beyond the last entry the mode is
// chase permanently.
var DefaultModeSchedule = []float64{7, 27, 34, 54, 59, 79, 84}

// ScheduledMode returns the mode the global schedule dictates at the given
// elapsed time.
func ScheduledMode(schedule []float64, elapsed float64) State {
	for i, boundary := range schedule {
		if elapsed < boundary {
			if i%2 == 0 {
				return StateScatter
			}
			return StateChase
		}
	}
	return StateChase
}

// Controller owns an agent's state machine and target selection. Each tick
// it produces a continuous direction suggestion for the movement integrator,
// or no suggestion when no route exists.
type Controller struct {
	personality Personality
	state       State
	spawn       grid.Point
	schedule    []float64

	modeClock           float64
	frightenedRemaining float64

	route       []grid.Point
	routeIdx    int
	routeTarget grid.Point
	sincePlan   float64

	planner *path.Planner
	maze    *grid.Maze
	rng     *rand.Rand

	// onTransition observes state changes; used for event publishing.
	onTransition func(from, to State)

	// onNoRoute observes replans that found no route to the target.
	onNoRoute func(target grid.Point)
}

// ControllerConfig assembles a controller.
type ControllerConfig struct {
	Personality  Personality
	Spawn        grid.Point
	Schedule     []float64
	Planner      *path.Planner
	Maze         *grid.Maze
	RNG          *rand.Rand
	OnTransition func(from, to State)
	OnNoRoute    func(target grid.Point)
}

// NewController builds a controller in the entering state.
func NewController(cfg ControllerConfig) *Controller {
	schedule := cfg.Schedule
	if schedule == nil {
		schedule = DefaultModeSchedule
	}
	rng := cfg.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Controller{
		personality:  cfg.Personality,
		state:        StateEntering,
		spawn:        cfg.Spawn,
		schedule:     schedule,
		planner:      cfg.Planner,
		maze:         cfg.Maze,
		rng:          rng,
		onTransition: cfg.OnTransition,
		onNoRoute:    cfg.OnNoRoute,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Personality returns the fixed behavioral tag.
func (c *Controller) Personality() Personality {
	return c.personality
}

// IsVulnerable reports whether the agent can currently be eaten. A pure
// projection of the authoritative state.
func (c *Controller) IsVulnerable() bool {
	return c.state == StateFrightened
}

// SpeedFactor scales movement speed by lifecycle state.
func (c *Controller) SpeedFactor() float64 {
	switch c.state {
	case StateFrightened:
		return 0.6
	case StateDead:
		return 1.5
	default:
		return 1.0
	}
}

// SetFrightened toggles frightened mode. Activation interrupts scatter and
// chase only; dead and entering agents ignore it. Deactivation restores the
// schedule-dictated mode.
func (c *Controller) SetFrightened(on bool) {
	if on {
		if c.state != StateScatter && c.state != StateChase {
			return
		}
		c.frightenedRemaining = frightenedDuration
		c.transition(StateFrightened)
		return
	}
	if c.state != StateFrightened {
		return
	}
	c.frightenedRemaining = 0
	c.transition(ScheduledMode(c.schedule, c.modeClock))
}

// Kill puts any live agent into the dead state. Dead is left only through
// Respawn, never by a timer.
func (c *Controller) Kill() {
	if c.state == StateDead {
		return
	}
	c.frightenedRemaining = 0
	c.transition(StateDead)
}

// Respawn returns a dead agent to scatter. External trigger only.
func (c *Controller) Respawn() {
	if c.state != StateDead {
		return
	}
	c.clearRoute()
	c.transition(StateScatter)
}

// Reset restores spawn conditions: entering state, cleared route, zeroed
// timers.
func (c *Controller) Reset() {
	c.clearRoute()
	c.modeClock = 0
	c.frightenedRemaining = 0
	c.transition(StateEntering)
}

// Update advances timers and the state machine, then emits the continuous
// direction toward the next waypoint of the current route. ok is false when
// no route exists; the caller holds position for the tick — a legitimate
// steady state, not a failure.
func (c *Controller) Update(dt float64, self grid.Vec2, tracked TrackedAgent) (grid.Vec2, bool) {
	c.advanceClocks(dt)

	if c.state == StateEntering {
		center := c.maze.Center().Center()
		if self.Sub(center).Length() < enteringExitRadius {
			c.transition(StateScatter)
		}
	}

	target := c.selectTarget(self, tracked)
	c.ensureRoute(self, target)
	return c.followRoute(self)
}

func (c *Controller) advanceClocks(dt float64) {
	c.modeClock += dt
	c.sincePlan += dt

	if c.state == StateFrightened {
		c.frightenedRemaining -= dt
		if c.frightenedRemaining <= 0 {
			c.frightenedRemaining = 0
			// Strictly chase on expiry, never the pre-frightened state.
			c.transition(StateChase)
		}
		return
	}

	// The schedule only drives the scatter/chase pair.
	if c.state == StateScatter || c.state == StateChase {
		if scheduled := ScheduledMode(c.schedule, c.modeClock); scheduled != c.state {
			c.transition(scheduled)
		}
	}
}

func (c *Controller) transition(to State) {
	if c.state == to {
		return
	}
	from := c.state
	c.state = to
	c.clearRoute()
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

// selectTarget computes the cell the agent steers toward, by state and
// personality.
func (c *Controller) selectTarget(self grid.Vec2, tracked TrackedAgent) grid.Point {
	ctx := targetContext{self: self, tracked: tracked, maze: c.maze, rng: c.rng}
	switch c.state {
	case StateEntering:
		return c.maze.Center()
	case StateScatter:
		return ScatterCorner(c.personality, c.maze)
	case StateFrightened:
		return fleeTarget(ctx)
	case StateDead:
		return c.spawn
	default:
		return chaseTargets[c.personality](ctx)
	}
}

// ensureRoute replans when the route is exhausted, the replan interval has
// elapsed, or the target has moved beyond tolerance since the last plan.
// This throttling bounds per-tick planner load against a moving target.
func (c *Controller) ensureRoute(self grid.Vec2, target grid.Point) {
	exhausted := c.routeIdx >= len(c.route)
	stale := c.sincePlan >= c.personality.replanInterval()
	moved := target.Center().Sub(c.routeTarget.Center()).Length() > targetMovedTolerance

	if !exhausted && !stale && !moved {
		return
	}

	c.route = c.planner.FindPathToNearest(self.Cell(), target, nearestSearchRadius)
	c.routeIdx = 0
	c.routeTarget = target
	c.sincePlan = 0
	if len(c.route) == 0 && c.onNoRoute != nil {
		c.onNoRoute(target)
	}
}

// followRoute advances past reached waypoints and points at the next one.
func (c *Controller) followRoute(self grid.Vec2) (grid.Vec2, bool) {
	for c.routeIdx < len(c.route) {
		waypoint := c.route[c.routeIdx].Center()
		delta := waypoint.Sub(self)
		if delta.Length() < waypointReachedRadius {
			c.routeIdx++
			continue
		}
		return delta.Normalized(), true
	}
	return grid.Vec2{}, false
}

func (c *Controller) clearRoute() {
	c.route = nil
	c.routeIdx = 0
	c.sincePlan = 0
}
