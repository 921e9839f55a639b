// Package level loads and validates the YAML level documents that describe a
// maze, its spawns, and its agent roster.
package level

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mazebound/server/internal/agent"
	"mazebound/server/internal/grid"
)

// CellRef is a grid coordinate as authored in a level document.
type CellRef struct {
	X int `yaml:"x" json:"x"`
	Z int `yaml:"z" json:"z"`
}

// Point converts the authored coordinate to a grid point.
func (c CellRef) Point() grid.Point {
	return grid.Point{X: c.X, Z: c.Z}
}

// AgentDef is one authored agent entry.
type AgentDef struct {
	Personality string  `yaml:"personality" json:"personality"`
	Spawn       CellRef `yaml:"spawn" json:"spawn"`
	Scale       float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
	Speed       float64 `yaml:"speed,omitempty" json:"speed,omitempty"`
}

// Document is the on-disk shape of a level. Layout rows use '#' for walls,
// '.' for pellets, 'o' for power pellets and spaces for open floor.
type Document struct {
	Name         string     `yaml:"name" json:"name"`
	CellSize     float64    `yaml:"cell_size,omitempty" json:"cell_size,omitempty"`
	Layout       []string   `yaml:"layout" json:"layout"`
	TrackedSpawn CellRef    `yaml:"tracked_spawn" json:"tracked_spawn"`
	Agents       []AgentDef `yaml:"agents" json:"agents"`
	Schedule     []float64  `yaml:"schedule,omitempty" json:"schedule,omitempty"`
}

// AgentSpec is a validated agent entry ready for spawning.
type AgentSpec struct {
	Personality agent.Personality
	Spawn       grid.Point
	Scale       float64
	Speed       float64
}

// Level is a validated, compiled level document.
type Level struct {
	Name         string
	Maze         *grid.Maze
	TrackedSpawn grid.Point
	Agents       []AgentSpec
	Schedule     []float64
}

// Load reads and compiles a level document from disk.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse compiles a level document from raw YAML.
func Parse(data []byte) (*Level, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("level: decode: %w", err)
	}
	return Compile(doc)
}

// Compile validates a document and builds its maze.
func Compile(doc Document) (*Level, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("level: missing name")
	}
	maze, err := grid.ParseRows(doc.Layout, doc.CellSize)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", doc.Name, err)
	}

	tracked := doc.TrackedSpawn.Point()
	if err := validateSpawn(maze, tracked); err != nil {
		return nil, fmt.Errorf("level %s: tracked spawn: %w", doc.Name, err)
	}

	if len(doc.Agents) == 0 {
		return nil, fmt.Errorf("level %s: no agents declared", doc.Name)
	}
	specs := make([]AgentSpec, 0, len(doc.Agents))
	for i, def := range doc.Agents {
		personality, err := agent.ParsePersonality(def.Personality)
		if err != nil {
			return nil, fmt.Errorf("level %s: agent %d: %w", doc.Name, i, err)
		}
		spawn := def.Spawn.Point()
		if err := validateSpawn(maze, spawn); err != nil {
			return nil, fmt.Errorf("level %s: agent %d spawn: %w", doc.Name, i, err)
		}
		specs = append(specs, AgentSpec{
			Personality: personality,
			Spawn:       spawn,
			Scale:       def.Scale,
			Speed:       def.Speed,
		})
	}

	schedule := doc.Schedule
	if len(schedule) == 0 {
		schedule = agent.DefaultModeSchedule
	}
	for i := 1; i < len(schedule); i++ {
		if schedule[i] <= schedule[i-1] {
			return nil, fmt.Errorf("level %s: schedule timestamps must increase", doc.Name)
		}
	}

	return &Level{
		Name:         doc.Name,
		Maze:         maze,
		TrackedSpawn: tracked,
		Agents:       specs,
		Schedule:     schedule,
	}, nil
}

func validateSpawn(maze *grid.Maze, cell grid.Point) error {
	if !maze.InBounds(cell) {
		return fmt.Errorf("cell (%d,%d) is out of bounds", cell.X, cell.Z)
	}
	if maze.IsWall(cell.X, cell.Z) {
		return fmt.Errorf("cell (%d,%d) is a wall", cell.X, cell.Z)
	}
	return nil
}
