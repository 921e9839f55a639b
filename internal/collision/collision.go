// Package collision answers legality queries for movement over a maze. Every
// operation is a pure function of the occupancy oracle: nothing here mutates
// state, and every input — including out-of-range or fractional coordinates —
// produces a defined answer instead of an error.
package collision

import (
	"math"

	"mazebound/server/internal/grid"
)

// Kind classifies what blocked a query. Boundary and wall block movement
// identically; the distinction only shapes diagnostics.
type Kind string

const (
	KindNone     Kind = "none"
	KindWall     Kind = "wall"
	KindBoundary Kind = "boundary"
)

// Result reports the outcome of a classified collision query.
type Result struct {
	HasCollision bool
	Kind         Kind
	Cell         grid.Point
}

// System evaluates collision queries against one maze.
type System struct {
	maze *grid.Maze
}

// NewSystem wraps the given occupancy oracle.
func NewSystem(maze *grid.Maze) *System {
	return &System{maze: maze}
}

// CellBlocked reports whether the cell is impassable per the oracle.
func (s *System) CellBlocked(p grid.Point) bool {
	if s == nil || s.maze == nil {
		return true
	}
	return s.maze.IsWall(p.X, p.Z)
}

// StepBlocked reports whether stepping from the current cell along the given
// unit direction lands on an impassable cell. The zero direction is a no-op
// move and never collides.
func (s *System) StepBlocked(from, dir grid.Point) bool {
	if dir.IsZero() {
		return false
	}
	return s.CellBlocked(from.Add(dir))
}

// ClassifyCell distinguishes an out-of-bounds hit from an internal wall.
func (s *System) ClassifyCell(p grid.Point) Result {
	if s == nil || s.maze == nil || !s.maze.InBounds(p) {
		return Result{HasCollision: true, Kind: KindBoundary, Cell: p}
	}
	if s.maze.IsWall(p.X, p.Z) {
		return Result{HasCollision: true, Kind: KindWall, Cell: p}
	}
	return Result{Kind: KindNone, Cell: p}
}

// CheckGridCollision classifies the cell under a continuous position.
func (s *System) CheckGridCollision(pos grid.Vec2) Result {
	return s.ClassifyCell(pos.Cell())
}

// CheckBoundaryCollision classifies a cell coordinate directly.
func (s *System) CheckBoundaryCollision(x, z int) Result {
	return s.ClassifyCell(grid.Point{X: x, Z: z})
}

// ResolveStep returns the attempted step unchanged when it is legal and the
// zero step when it would collide. Callers commit whatever comes back.
func (s *System) ResolveStep(from, step grid.Point) grid.Point {
	if s.StepBlocked(from, step) {
		return grid.Point{}
	}
	return step
}

// SweptBlocked rasterizes the straight line between the cells under start and
// end and reports whether any traversed cell — endpoints included — is
// impassable. Used to validate large or fast steps that could tunnel past a
// single-cell check.
func (s *System) SweptBlocked(start, end grid.Vec2) bool {
	for _, cell := range TraverseLine(start.Cell(), end.Cell()) {
		if s.CellBlocked(cell) {
			return true
		}
	}
	return false
}

// TraverseLine lists every cell on the Bresenham line from a to b, inclusive
// of both endpoints.
func TraverseLine(a, b grid.Point) []grid.Point {
	dx := b.X - a.X
	if dx < 0 {
		dx = -dx
	}
	dz := b.Z - a.Z
	if dz < 0 {
		dz = -dz
	}
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sz := 1
	if a.Z > b.Z {
		sz = -1
	}

	cells := make([]grid.Point, 0, dx+dz+1)
	x, z := a.X, a.Z
	err := dx - dz
	for {
		cells = append(cells, grid.Point{X: x, Z: z})
		if x == b.X && z == b.Z {
			return cells
		}
		e2 := 2 * err
		if e2 > -dz {
			err -= dz
			x += sx
		}
		if e2 < dx {
			err += dx
			z += sz
		}
	}
}

// NearestValidCell clamps the cell into bounds and, when the clamped cell is
// still a wall, scans the four orthogonal neighbors in the fixed order up,
// down, right, left, returning the first passable one. When the clamped cell
// and all four neighbors are walls the clamped cell comes back unchanged;
// callers must treat that as "no safe cell found" rather than trusting it.
func (s *System) NearestValidCell(p grid.Point) grid.Point {
	if s == nil || s.maze == nil {
		return p
	}
	clamped := s.maze.Clamp(p)
	if !s.CellBlocked(clamped) {
		return clamped
	}
	for _, dir := range grid.OrthogonalDirs {
		neighbor := clamped.Add(dir)
		if !s.CellBlocked(neighbor) {
			return neighbor
		}
	}
	return clamped
}

// defaultBoxExtent is the half-width of the unit bounding cube shared by all
// entities before per-entity scaling.
const defaultBoxExtent = 0.5

// Body is the minimal entity view the box test needs: a continuous center
// position in grid units and a uniform scale factor.
type Body struct {
	Center grid.Vec2
	Scale  float64
}

func (b Body) halfExtent() float64 {
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	return defaultBoxExtent * scale
}

// Contact describes an overlap between two entity boxes.
type Contact struct {
	Point  grid.Vec2
	Normal grid.Vec2
}

// BoxOverlap performs an axis-aligned box test between two entities. Bounds
// are inclusive, so touching counts as collision. On overlap it reports the
// midpoint of the two centers as the contact point and the unit vector from
// a's center toward b's as the contact normal.
func BoxOverlap(a, b Body) (Contact, bool) {
	ha := a.halfExtent()
	hb := b.halfExtent()
	if math.Abs(a.Center.X-b.Center.X) > ha+hb {
		return Contact{}, false
	}
	if math.Abs(a.Center.Z-b.Center.Z) > ha+hb {
		return Contact{}, false
	}

	contact := Contact{
		Point:  a.Center.Add(b.Center).Scale(0.5),
		Normal: b.Center.Sub(a.Center).Normalized(),
	}
	return contact, true
}
