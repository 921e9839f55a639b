// Package sim owns the per-level simulation: the maze, the shared route
// planner, the agent roster, and the tick loop ordering.
package sim

import (
	"context"
	"math/rand"

	"github.com/google/uuid"

	"mazebound/server/internal/agent"
	"mazebound/server/internal/collision"
	"mazebound/server/internal/grid"
	"mazebound/server/internal/level"
	"mazebound/server/internal/path"
	"mazebound/server/logging"
	simlog "mazebound/server/logging/simulation"
)

// AgentSnapshot is the per-tick, per-agent view handed to presentation
// collaborators.
type AgentSnapshot struct {
	ID          string     `json:"id"`
	Personality string     `json:"personality"`
	State       string     `json:"state"`
	Vulnerable  bool       `json:"vulnerable"`
	Cell        grid.Point `json:"cell"`
	StepTarget  grid.Point `json:"stepTarget"`
	Fraction    float64    `json:"fraction"`
	Direction   grid.Vec2  `json:"direction"`
	Pos         grid.Vec2  `json:"pos"`
}

// Snapshot is the full per-tick world view.
type Snapshot struct {
	Tick    uint64          `json:"tick"`
	Level   string          `json:"level"`
	Tracked grid.Vec2       `json:"tracked"`
	Agents  []AgentSnapshot `json:"agents"`
}

// Contact reports a bounding-box overlap between an agent and the tracked
// target. Contacts never block movement; they are information for the
// collaborator that decides captures.
type Contact struct {
	AgentID    string
	Vulnerable bool
	Point      grid.Vec2
	Normal     grid.Vec2
}

// World is one level in flight. All access is single-threaded: the owner
// calls Advance once per frame and triggers between frames.
type World struct {
	name      string
	maze      *grid.Maze
	planner   *path.Planner
	collision *collision.System
	agents    []*agent.Agent
	tracked   agent.TrackedAgent
	schedule  []float64
	rng       *rand.Rand
	publisher logging.Publisher
	tick      uint64
}

// Option adjusts world construction.
type Option func(*worldConfig)

type worldConfig struct {
	seed      int64
	publisher logging.Publisher
	planner   []path.Option
}

// WithSeed pins the world RNG for deterministic runs.
func WithSeed(seed int64) Option {
	return func(cfg *worldConfig) { cfg.seed = seed }
}

// WithPublisher routes world events to the given publisher.
func WithPublisher(p logging.Publisher) Option {
	return func(cfg *worldConfig) { cfg.publisher = p }
}

// WithPlannerOptions forwards options to the route planner.
func WithPlannerOptions(opts ...path.Option) Option {
	return func(cfg *worldConfig) { cfg.planner = opts }
}

// NewWorld builds a world from a compiled level. The planner and its cache
// are created here and shared by every agent; they live exactly as long as
// the world.
func NewWorld(lvl *level.Level, opts ...Option) *World {
	cfg := worldConfig{seed: 1, publisher: logging.NopPublisher()}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &World{
		name:      lvl.Name,
		maze:      lvl.Maze,
		planner:   path.NewPlanner(lvl.Maze, cfg.planner...),
		collision: collision.NewSystem(lvl.Maze),
		schedule:  lvl.Schedule,
		rng:       rand.New(rand.NewSource(cfg.seed)),
		publisher: cfg.publisher,
		tracked: agent.TrackedAgent{
			Pos:     lvl.TrackedSpawn.Center(),
			Heading: grid.Vec2{X: 1, Z: 0},
		},
	}

	for _, spec := range lvl.Agents {
		id := uuid.NewString()
		a := agent.New(agent.Config{
			ID:    id,
			Scale: spec.Scale,
			Speed: spec.Speed,
			Controller: agent.ControllerConfig{
				Personality: spec.Personality,
				Spawn:       spec.Spawn,
				Schedule:    lvl.Schedule,
				Planner:     w.planner,
				Maze:        lvl.Maze,
				RNG:         rand.New(rand.NewSource(w.rng.Int63())),
				OnTransition: func(from, to agent.State) {
					w.publisher.Publish(context.Background(), simlog.AgentStateChange(w.tick, id, from.String(), to.String()))
				},
				OnNoRoute: func(target grid.Point) {
					w.publisher.Publish(context.Background(), simlog.PathUnreachable(w.tick, id, target.X, target.Z))
				},
			},
		})
		w.agents = append(w.agents, a)
		w.publisher.Publish(context.Background(),
			simlog.AgentSpawned(w.tick, id, spec.Personality.String()).WithExtra("spawn", spec.Spawn))
	}

	w.publisher.Publish(context.Background(), simlog.LevelLoaded(w.tick, lvl.Name, lvl.Maze.Width(), lvl.Maze.Height(), len(lvl.Agents)))
	return w
}

// SetTracked feeds the tracked agent's current position and heading from the
// input collaborator. The position is in world space; heading must be a unit
// vector.
func (w *World) SetTracked(worldPos, heading grid.Vec2) {
	pos := grid.Vec2{
		X: worldPos.X/w.maze.CellSize() + float64(w.maze.Width())/2,
		Z: worldPos.Z/w.maze.CellSize() + float64(w.maze.Height())/2,
	}
	w.tracked = agent.TrackedAgent{Pos: pos, Heading: heading}
}

// SetTrackedCell feeds the tracked agent's position directly in grid units.
func (w *World) SetTrackedCell(cell grid.Point, heading grid.Vec2) {
	w.tracked = agent.TrackedAgent{Pos: cell.Center(), Heading: heading}
}

// Advance runs one simulation tick. Per agent the AI decision precedes the
// movement update, and agents never see each other's uncommitted steps.
// Returned contacts are the cross-agent check, separate from per-agent
// collision.
func (w *World) Advance(dt float64) []Contact {
	if dt < 0 {
		dt = 0
	}
	w.tick++

	for _, a := range w.agents {
		a.Update(dt, w.tracked, w.collision)
	}

	return w.detectContacts()
}

func (w *World) detectContacts() []Contact {
	trackedBody := collision.Body{Center: w.tracked.Pos, Scale: 1}
	var contacts []Contact
	for _, a := range w.agents {
		if a.Controller().State() == agent.StateDead {
			continue
		}
		hit, ok := collision.BoxOverlap(a.Body(), trackedBody)
		if !ok {
			continue
		}
		vulnerable := a.Controller().IsVulnerable()
		contacts = append(contacts, Contact{
			AgentID:    a.ID,
			Vulnerable: vulnerable,
			Point:      hit.Point,
			Normal:     hit.Normal,
		})
		w.publisher.Publish(context.Background(), simlog.AgentContact(w.tick, a.ID, hit.Point.X, hit.Point.Z, vulnerable))
	}
	return contacts
}

// Snapshot captures the current world view for broadcast.
func (w *World) Snapshot() Snapshot {
	agents := make([]AgentSnapshot, 0, len(w.agents))
	for _, a := range w.agents {
		mover := a.Mover()
		dirStep := mover.Direction()
		agents = append(agents, AgentSnapshot{
			ID:          a.ID,
			Personality: a.Controller().Personality().String(),
			State:       a.Controller().State().String(),
			Vulnerable:  a.Controller().IsVulnerable(),
			Cell:        mover.Cell(),
			StepTarget:  mover.StepTarget(),
			Fraction:    mover.Fraction(),
			Direction:   grid.Vec2{X: float64(dirStep.X), Z: float64(dirStep.Z)},
			Pos:         mover.Pos(),
		})
	}
	return Snapshot{
		Tick:    w.tick,
		Level:   w.name,
		Tracked: w.tracked.Pos,
		Agents:  agents,
	}
}

// SetFrightened toggles frightened mode on every live agent.
func (w *World) SetFrightened(on bool) {
	for _, a := range w.agents {
		a.Controller().SetFrightened(on)
	}
}

// Kill moves one agent to the dead state.
func (w *World) Kill(agentID string) bool {
	for _, a := range w.agents {
		if a.ID == agentID {
			a.Controller().Kill()
			return true
		}
	}
	return false
}

// Respawn revives one dead agent at its spawn.
func (w *World) Respawn(agentID string) bool {
	for _, a := range w.agents {
		if a.ID == agentID {
			a.Respawn()
			return true
		}
	}
	return false
}

// Reset restores spawn conditions for every agent and clears the shared
// route cache.
func (w *World) Reset() {
	for _, a := range w.agents {
		a.Reset()
	}
	w.planner.ClearCache()
	w.publisher.Publish(context.Background(), simlog.LevelReset(w.tick, w.name))
}

// Agents lists the live agent handles, for tests and diagnostics.
func (w *World) Agents() []*agent.Agent {
	return w.agents
}

// Tick returns the current tick counter.
func (w *World) Tick() uint64 {
	return w.tick
}

// Maze exposes the occupancy oracle.
func (w *World) Maze() *grid.Maze {
	return w.maze
}
