package grid

import "fmt"

// CellKind enumerates the tile kinds a maze layout can declare.
type CellKind uint8

const (
	CellOpen CellKind = iota
	CellWall
	CellPellet
	CellPowerPellet
)

// DefaultCellSize is the world-space edge length of one maze tile.
const DefaultCellSize = 1.0

// Maze is the static occupancy oracle for one level. It answers wall queries
// closed-world: every coordinate outside [0,width) x [0,height) reports as a
// wall, so no caller ever needs its own bounds check. The layout is immutable
// here; pellet consumption belongs to the presentation collaborators.
type Maze struct {
	width    int
	height   int
	cells    []CellKind
	cellSize float64
}

// NewMaze builds a maze from a row-major cell slice. The slice length must be
// exactly width*height.
func NewMaze(width, height int, cells []CellKind, cellSize float64) (*Maze, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", width, height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("grid: layout holds %d cells, want %d", len(cells), width*height)
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	copied := make([]CellKind, len(cells))
	copy(copied, cells)
	return &Maze{width: width, height: height, cells: copied, cellSize: cellSize}, nil
}

// ParseRows builds a maze from layout rows, one rune per cell:
// '#' wall, '.' pellet, 'o' power pellet, anything else open.
func ParseRows(rows []string, cellSize float64) (*Maze, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid: empty layout")
	}
	width := len([]rune(rows[0]))
	cells := make([]CellKind, 0, width*len(rows))
	for i, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("grid: row %d is %d cells wide, want %d", i, len(runes), width)
		}
		for _, r := range runes {
			switch r {
			case '#':
				cells = append(cells, CellWall)
			case '.':
				cells = append(cells, CellPellet)
			case 'o':
				cells = append(cells, CellPowerPellet)
			default:
				cells = append(cells, CellOpen)
			}
		}
	}
	return NewMaze(width, len(rows), cells, cellSize)
}

// Width returns the maze width in cells.
func (m *Maze) Width() int {
	if m == nil {
		return 0
	}
	return m.width
}

// Height returns the maze height in cells.
func (m *Maze) Height() int {
	if m == nil {
		return 0
	}
	return m.height
}

// CellSize returns the world-space edge length of one tile.
func (m *Maze) CellSize() float64 {
	if m == nil {
		return DefaultCellSize
	}
	return m.cellSize
}

// InBounds reports whether the cell lies inside the declared grid.
func (m *Maze) InBounds(p Point) bool {
	return m != nil && p.X >= 0 && p.Z >= 0 && p.X < m.width && p.Z < m.height
}

// CellAt returns the declared kind of a cell. Out-of-range coordinates read
// as walls.
func (m *Maze) CellAt(p Point) CellKind {
	if !m.InBounds(p) {
		return CellWall
	}
	return m.cells[p.Z*m.width+p.X]
}

// IsWall reports whether the cell is impassable.
func (m *Maze) IsWall(x, z int) bool {
	return m.CellAt(Point{X: x, Z: z}) == CellWall
}

// IsWallAt floors a continuous position to its cell and reports whether that
// cell is impassable.
func (m *Maze) IsWallAt(v Vec2) bool {
	cell := v.Cell()
	return m.IsWall(cell.X, cell.Z)
}

// Center returns the cell closest to the geometric middle of the grid.
func (m *Maze) Center() Point {
	if m == nil {
		return Point{}
	}
	return Point{X: m.width / 2, Z: m.height / 2}
}

// Clamp forces a cell into bounds without consulting occupancy.
func (m *Maze) Clamp(p Point) Point {
	if m == nil {
		return p
	}
	if p.X < 0 {
		p.X = 0
	} else if p.X >= m.width {
		p.X = m.width - 1
	}
	if p.Z < 0 {
		p.Z = 0
	} else if p.Z >= m.height {
		p.Z = m.height - 1
	}
	return p
}

// GridToWorld maps a cell to the world-space position of its center. The
// transform scales by the cell size and centers the grid on the world origin.
func (m *Maze) GridToWorld(p Point) Vec2 {
	if m == nil {
		return Vec2{}
	}
	return Vec2{
		X: (float64(p.X) + 0.5 - float64(m.width)/2) * m.cellSize,
		Z: (float64(p.Z) + 0.5 - float64(m.height)/2) * m.cellSize,
	}
}

// WorldToGrid inverts GridToWorld, flooring to the containing cell. The
// result may be out of bounds; occupancy queries on it still behave
// closed-world.
func (m *Maze) WorldToGrid(v Vec2) Point {
	if m == nil {
		return Point{}
	}
	scaled := Vec2{
		X: v.X/m.cellSize + float64(m.width)/2,
		Z: v.Z/m.cellSize + float64(m.height)/2,
	}
	return scaled.Cell()
}
