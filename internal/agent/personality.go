package agent

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"mazebound/server/internal/grid"
)

// Personality is the fixed behavioral tag selecting an agent's chase-target
// strategy.
type Personality uint8

const (
	PersonalityAggressive Personality = iota
	PersonalityAmbush
	PersonalityRandom
	PersonalityDefensive
)

func (p Personality) String() string {
	switch p {
	case PersonalityAggressive:
		return "aggressive"
	case PersonalityAmbush:
		return "ambush"
	case PersonalityRandom:
		return "random"
	case PersonalityDefensive:
		return "defensive"
	default:
		return "unknown"
	}
}

// ParsePersonality maps a config label to its personality tag.
func ParsePersonality(label string) (Personality, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "aggressive":
		return PersonalityAggressive, nil
	case "ambush":
		return PersonalityAmbush, nil
	case "random":
		return PersonalityRandom, nil
	case "defensive":
		return PersonalityDefensive, nil
	default:
		return 0, fmt.Errorf("agent: unknown personality %q", label)
	}
}

// Target-selection tuning. These values are observable gameplay behavior,
// not free parameters.
const (
	aggressiveLead   = 2
	ambushLead       = 6
	randomTargetOdds = 0.3
	defensiveRadius  = 8.0
	defensiveMirror  = 3
	fleeDistance     = 5
	fleeRandomOdds   = 0.3
)

// TrackedAgent is the externally fed view of the pursued agent: its
// continuous position in grid units and its unit heading.
type TrackedAgent struct {
	Pos     grid.Vec2
	Heading grid.Vec2
}

// Cell returns the tracked agent's current grid cell.
func (t TrackedAgent) Cell() grid.Point {
	return t.Pos.Cell()
}

// targetContext carries everything a strategy may consult.
type targetContext struct {
	self    grid.Vec2
	tracked TrackedAgent
	maze    *grid.Maze
	rng     *rand.Rand
}

type targetFunc func(targetContext) grid.Point

// chaseTargets dispatches chase-state target selection by personality.
// Adding a personality means adding one entry here plus a scatter corner.
var chaseTargets = map[Personality]targetFunc{
	PersonalityAggressive: aggressiveTarget,
	PersonalityAmbush:     ambushTarget,
	PersonalityRandom:     randomTarget,
	PersonalityDefensive:  defensiveTarget,
}

// aggressiveTarget leads the tracked agent by two cells along its heading.
func aggressiveTarget(ctx targetContext) grid.Point {
	return leadTarget(ctx.tracked, aggressiveLead)
}

// ambushTarget intercepts further ahead of the tracked agent's travel.
func ambushTarget(ctx targetContext) grid.Point {
	return leadTarget(ctx.tracked, ambushLead)
}

func leadTarget(tracked TrackedAgent, lead int) grid.Point {
	cell := tracked.Cell()
	offset := tracked.Heading.Scale(float64(lead))
	return grid.Point{
		X: cell.X + int(math.Round(offset.X)),
		Z: cell.Z + int(math.Round(offset.Z)),
	}
}

// randomTarget is a coin flip: usually the tracked agent directly, sometimes
// a uniformly random in-bounds cell.
func randomTarget(ctx targetContext) grid.Point {
	if ctx.rng.Float64() < randomTargetOdds {
		return grid.Point{
			X: ctx.rng.Intn(ctx.maze.Width()),
			Z: ctx.rng.Intn(ctx.maze.Height()),
		}
	}
	return ctx.tracked.Cell()
}

// defensiveTarget hovers at a distance: inside the territorial radius it
// extrapolates away from the tracked agent, outside it closes in directly.
func defensiveTarget(ctx targetContext) grid.Point {
	displacement := ctx.self.Sub(ctx.tracked.Pos)
	if displacement.Length() < defensiveRadius {
		away := ctx.tracked.Pos.Add(displacement.Scale(defensiveMirror))
		return away.Cell()
	}
	return ctx.tracked.Cell()
}

// fleeTarget points away from the tracked agent, with a random-valid-step
// override so the flee path is not deterministic.
func fleeTarget(ctx targetContext) grid.Point {
	if ctx.rng.Float64() < fleeRandomOdds {
		if step, ok := randomValidStep(ctx); ok {
			return step
		}
	}
	away := ctx.self.Sub(ctx.tracked.Pos).Normalized().Scale(fleeDistance)
	return ctx.self.Add(away).Cell()
}

func randomValidStep(ctx targetContext) (grid.Point, bool) {
	cell := ctx.self.Cell()
	options := make([]grid.Point, 0, 4)
	for _, dir := range grid.OrthogonalDirs {
		neighbor := cell.Add(dir)
		if !ctx.maze.IsWall(neighbor.X, neighbor.Z) {
			options = append(options, neighbor)
		}
	}
	if len(options) == 0 {
		return grid.Point{}, false
	}
	return options[ctx.rng.Intn(len(options))], true
}

// ScatterCorner returns the fixed maze corner a personality retreats to
// while scattering.
func ScatterCorner(p Personality, maze *grid.Maze) grid.Point {
	w, h := maze.Width(), maze.Height()
	switch p {
	case PersonalityAggressive:
		return grid.Point{X: w - 2, Z: 1}
	case PersonalityAmbush:
		return grid.Point{X: 1, Z: 1}
	case PersonalityRandom:
		return grid.Point{X: w - 2, Z: h - 2}
	default:
		return grid.Point{X: 1, Z: h - 2}
	}
}

// replanInterval returns how often a personality refreshes its route while
// its target keeps moving.
func (p Personality) replanInterval() float64 {
	switch p {
	case PersonalityAggressive:
		return 0.15
	case PersonalityAmbush:
		return 0.3
	case PersonalityRandom:
		return 0.5
	default:
		return 0.25
	}
}
