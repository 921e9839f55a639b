package grid

import "math"

// Point addresses one maze tile on the x/z plane.
type Point struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Add returns the component-wise sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Z: p.Z + q.Z}
}

// Scale multiplies both components by the given factor.
func (p Point) Scale(factor int) Point {
	return Point{X: p.X * factor, Z: p.Z * factor}
}

// Manhattan returns the L1 distance between two points.
func (p Point) Manhattan(q Point) int {
	dx := p.X - q.X
	if dx < 0 {
		dx = -dx
	}
	dz := p.Z - q.Z
	if dz < 0 {
		dz = -dz
	}
	return dx + dz
}

// IsZero reports whether both components are zero.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Z == 0
}

// Axis-aligned unit steps. Up decreases z, matching row-major layouts where
// row zero is the top of the maze.
var (
	DirUp    = Point{X: 0, Z: -1}
	DirDown  = Point{X: 0, Z: 1}
	DirRight = Point{X: 1, Z: 0}
	DirLeft  = Point{X: -1, Z: 0}
)

// OrthogonalDirs lists the four unit steps in the fixed order used by
// neighbor fallbacks: up, down, right, left.
var OrthogonalDirs = [4]Point{DirUp, DirDown, DirRight, DirLeft}

// Vec2 is a continuous position or direction on the x/z plane, measured in
// grid units.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Z: v.Z + w.Z}
}

// Sub returns the component-wise difference v - w.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Z: v.Z - w.Z}
}

// Scale multiplies both components by the given factor.
func (v Vec2) Scale(factor float64) Vec2 {
	return Vec2{X: v.X * factor, Z: v.Z * factor}
}

// Length returns the Euclidean magnitude of the vector.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Z)
}

// Normalized returns a unit-length copy of the vector, or the zero vector
// when the magnitude is zero.
func (v Vec2) Normalized() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Z: v.Z / length}
}

// Cell floors both components to the containing grid cell. Cell (x,z) spans
// the half-open square [x,x+1) x [z,z+1).
func (v Vec2) Cell() Point {
	return Point{X: int(math.Floor(v.X)), Z: int(math.Floor(v.Z))}
}

// Center returns the continuous position at the center of a cell.
func (p Point) Center() Vec2 {
	return Vec2{X: float64(p.X) + 0.5, Z: float64(p.Z) + 0.5}
}
