package collision

import (
	"testing"

	"mazebound/server/internal/grid"
)

func newSystem(t *testing.T, rows []string) *System {
	t.Helper()
	maze, err := grid.ParseRows(rows, grid.DefaultCellSize)
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}
	return NewSystem(maze)
}

func openMaze(t *testing.T, size int) *System {
	t.Helper()
	rows := make([]string, size)
	for i := range rows {
		row := make([]byte, size)
		for j := range row {
			row[j] = ' '
		}
		rows[i] = string(row)
	}
	return newSystem(t, rows)
}

func TestZeroStepNeverCollides(t *testing.T) {
	sys := newSystem(t, []string{
		"###",
		"###",
		"###",
	})

	cells := []grid.Point{
		{X: 1, Z: 1},
		{X: 0, Z: 0},
		{X: -5, Z: 7},
	}
	for _, cell := range cells {
		if sys.StepBlocked(cell, grid.Point{}) {
			t.Fatalf("zero step from %+v reported as collision", cell)
		}
	}
}

func TestStepBlocked(t *testing.T) {
	sys := newSystem(t, []string{
		"###",
		"# #",
		"###",
	})

	from := grid.Point{X: 1, Z: 1}
	for _, dir := range grid.OrthogonalDirs {
		if !sys.StepBlocked(from, dir) {
			t.Fatalf("expected step %+v from walled-in cell to collide", dir)
		}
	}
	if got := sys.ResolveStep(from, grid.DirUp); !got.IsZero() {
		t.Fatalf("expected blocked step to resolve to zero, got %+v", got)
	}
	if got := sys.ResolveStep(from, grid.Point{}); !got.IsZero() {
		t.Fatalf("expected zero step to pass through unchanged")
	}
}

func TestBoundaryClassification(t *testing.T) {
	rows := make([]string, 11)
	for i := range rows {
		if i == 0 {
			rows[i] = "#          "
			continue
		}
		rows[i] = "           "
	}
	sys := newSystem(t, rows)

	res := sys.CheckBoundaryCollision(-1, 5)
	if !res.HasCollision || res.Kind != KindBoundary {
		t.Fatalf("expected boundary collision at (-1,5), got %+v", res)
	}

	res = sys.CheckBoundaryCollision(0, 0)
	if !res.HasCollision || res.Kind != KindWall {
		t.Fatalf("expected wall collision at (0,0), got %+v", res)
	}

	res = sys.CheckBoundaryCollision(5, 5)
	if res.HasCollision || res.Kind != KindNone {
		t.Fatalf("expected open cell at (5,5), got %+v", res)
	}
}

func TestSweptCollision(t *testing.T) {
	sys := newSystem(t, []string{
		"#  ",
		"   ",
		"   ",
	})

	start := grid.Point{X: 1, Z: 1}.Center()
	into := grid.Point{X: 0, Z: 0}.Center()
	if !sys.SweptBlocked(start, into) {
		t.Fatalf("expected sweep into wall cell (0,0) to collide")
	}

	clear := grid.Point{X: 2, Z: 2}.Center()
	if sys.SweptBlocked(start, clear) {
		t.Fatalf("expected sweep between open cells to pass")
	}
}

func TestTraverseLineVisitsEndpoints(t *testing.T) {
	cells := TraverseLine(grid.Point{X: 0, Z: 0}, grid.Point{X: 3, Z: 2})
	if cells[0] != (grid.Point{X: 0, Z: 0}) {
		t.Fatalf("line must start at the start cell, got %+v", cells[0])
	}
	if cells[len(cells)-1] != (grid.Point{X: 3, Z: 2}) {
		t.Fatalf("line must end at the end cell, got %+v", cells[len(cells)-1])
	}
	for i := 1; i < len(cells); i++ {
		dx := cells[i].X - cells[i-1].X
		dz := cells[i].Z - cells[i-1].Z
		if dx < -1 || dx > 1 || dz < -1 || dz > 1 {
			t.Fatalf("line skipped from %+v to %+v", cells[i-1], cells[i])
		}
	}
}

func TestNearestValidCellOrder(t *testing.T) {
	// (2,2) is a wall; up (2,1) and down (2,3) are walls too, right (3,2)
	// and left (1,2) are open. The fixed scan order must pick right.
	sys := newSystem(t, []string{
		"     ",
		"  #  ",
		"  #  ",
		"  #  ",
		"     ",
	})

	got := sys.NearestValidCell(grid.Point{X: 2, Z: 2})
	if got != (grid.Point{X: 3, Z: 2}) {
		t.Fatalf("expected right neighbor (3,2), got %+v", got)
	}
}

func TestNearestValidCellClampsAndDegenerates(t *testing.T) {
	sys := newSystem(t, []string{
		"## #",
		"####",
	})

	// (9,0) clamps to the wall at (3,0); up, down and right are blocked,
	// so the scan falls through to the open left neighbor.
	if got := sys.NearestValidCell(grid.Point{X: 9, Z: 0}); got != (grid.Point{X: 2, Z: 0}) {
		t.Fatalf("expected left neighbor (2,0), got %+v", got)
	}

	// Fully surrounded: the clamped, still-invalid cell comes back.
	boxed := newSystem(t, []string{
		"###",
		"###",
		"###",
	})
	if got := boxed.NearestValidCell(grid.Point{X: 1, Z: 1}); got != (grid.Point{X: 1, Z: 1}) {
		t.Fatalf("expected degenerate result to echo clamped cell, got %+v", got)
	}
}

func TestBoxOverlap(t *testing.T) {
	a := Body{Center: grid.Vec2{X: 0, Z: 0}, Scale: 1}
	b := Body{Center: grid.Vec2{X: 0.9, Z: 0}, Scale: 1}

	contact, hit := BoxOverlap(a, b)
	if !hit {
		t.Fatalf("expected overlapping boxes to collide")
	}
	if contact.Point != (grid.Vec2{X: 0.45, Z: 0}) {
		t.Fatalf("unexpected contact point %+v", contact.Point)
	}
	if contact.Normal != (grid.Vec2{X: 1, Z: 0}) {
		t.Fatalf("unexpected contact normal %+v", contact.Normal)
	}

	// Touching bounds are inclusive.
	touching := Body{Center: grid.Vec2{X: 1, Z: 0}, Scale: 1}
	if _, hit := BoxOverlap(a, touching); !hit {
		t.Fatalf("expected touching boxes to count as collision")
	}

	apart := Body{Center: grid.Vec2{X: 1.01, Z: 0}, Scale: 1}
	if _, hit := BoxOverlap(a, apart); hit {
		t.Fatalf("expected separated boxes to miss")
	}

	// Scale widens the box.
	big := Body{Center: grid.Vec2{X: 2, Z: 0}, Scale: 3}
	if _, hit := BoxOverlap(a, big); !hit {
		t.Fatalf("expected scaled box to reach the origin body")
	}
}
