package sim

import (
	"context"
	"testing"

	"mazebound/server/internal/agent"
	"mazebound/server/internal/grid"
	"mazebound/server/internal/level"
	"mazebound/server/logging"
)

const testLevelDoc = `
name: arena
layout:
  - "#########"
  - "#       #"
  - "# ## ## #"
  - "#       #"
  - "# ## ## #"
  - "#       #"
  - "#########"
tracked_spawn: {x: 1, z: 5}
agents:
  - personality: aggressive
    spawn: {x: 7, z: 1}
  - personality: ambush
    spawn: {x: 1, z: 1}
`

func testWorld(t *testing.T, opts ...Option) *World {
	t.Helper()
	lvl, err := level.Parse([]byte(testLevelDoc))
	if err != nil {
		t.Fatalf("parse level: %v", err)
	}
	opts = append([]Option{WithSeed(42)}, opts...)
	return NewWorld(lvl, opts...)
}

func TestWorldSpawnsAgents(t *testing.T) {
	w := testWorld(t)
	agents := w.Agents()
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents))
	}
	for _, a := range agents {
		if a.ID == "" {
			t.Fatalf("agent missing ID")
		}
		if a.Controller().State() != agent.StateEntering {
			t.Fatalf("agents must spawn entering, got %v", a.Controller().State())
		}
	}
	if agents[0].ID == agents[1].ID {
		t.Fatalf("agent IDs must be unique")
	}
}

func TestAdvanceMovesAgents(t *testing.T) {
	w := testWorld(t)
	w.SetTrackedCell(grid.Point{X: 1, Z: 5}, grid.Vec2{X: 1, Z: 0})

	before := w.Snapshot()
	for i := 0; i < 120; i++ {
		w.Advance(1.0 / 60)
	}
	after := w.Snapshot()

	if after.Tick != before.Tick+120 {
		t.Fatalf("tick did not advance: %d -> %d", before.Tick, after.Tick)
	}
	moved := false
	for i := range after.Agents {
		if after.Agents[i].Pos != before.Agents[i].Pos {
			moved = true
		}
	}
	if !moved {
		t.Fatalf("expected at least one agent to move over two seconds")
	}
}

func TestAgentsNeverOccupyWalls(t *testing.T) {
	w := testWorld(t)
	w.SetTrackedCell(grid.Point{X: 7, Z: 5}, grid.Vec2{X: 0, Z: -1})

	for i := 0; i < 600; i++ {
		w.Advance(1.0 / 60)
		for _, snap := range w.Snapshot().Agents {
			if w.Maze().IsWall(snap.Cell.X, snap.Cell.Z) {
				t.Fatalf("agent committed to wall cell %+v at tick %d", snap.Cell, w.Tick())
			}
			if w.Maze().IsWall(snap.StepTarget.X, snap.StepTarget.Z) {
				t.Fatalf("agent stepping into wall cell %+v at tick %d", snap.StepTarget, w.Tick())
			}
		}
	}
}

func TestFrightenedTrigger(t *testing.T) {
	w := testWorld(t)
	w.SetTrackedCell(grid.Point{X: 1, Z: 5}, grid.Vec2{X: 1, Z: 0})

	// Walk agents out of the entering bootstrap first.
	for i := 0; i < 300; i++ {
		w.Advance(1.0 / 60)
	}

	w.SetFrightened(true)
	for _, snap := range w.Snapshot().Agents {
		if snap.State == "scatter" || snap.State == "chase" {
			t.Fatalf("live agent missed the frightened trigger: %+v", snap)
		}
	}

	w.SetFrightened(false)
	for _, snap := range w.Snapshot().Agents {
		if snap.Vulnerable {
			t.Fatalf("deactivation left agent vulnerable: %+v", snap)
		}
	}
}

func TestKillAndRespawn(t *testing.T) {
	w := testWorld(t)
	id := w.Agents()[0].ID

	if !w.Kill(id) {
		t.Fatalf("kill reported unknown agent")
	}
	if w.Agents()[0].Controller().State() != agent.StateDead {
		t.Fatalf("expected dead state after kill")
	}
	if w.Kill("no-such-agent") {
		t.Fatalf("kill must reject unknown IDs")
	}

	if !w.Respawn(id) {
		t.Fatalf("respawn reported unknown agent")
	}
	ctrl := w.Agents()[0].Controller()
	if ctrl.State() != agent.StateScatter {
		t.Fatalf("expected scatter after respawn, got %v", ctrl.State())
	}
	if w.Agents()[0].Mover().Cell() != (grid.Point{X: 7, Z: 1}) {
		t.Fatalf("expected respawn at spawn cell, got %+v", w.Agents()[0].Mover().Cell())
	}
}

func TestResetRestoresSpawnConditions(t *testing.T) {
	w := testWorld(t)
	w.SetTrackedCell(grid.Point{X: 7, Z: 5}, grid.Vec2{X: -1, Z: 0})
	for i := 0; i < 300; i++ {
		w.Advance(1.0 / 60)
	}

	w.Reset()
	for i, a := range w.Agents() {
		if a.Controller().State() != agent.StateEntering {
			t.Fatalf("agent %d not entering after reset: %v", i, a.Controller().State())
		}
	}
	if w.Agents()[0].Mover().Cell() != (grid.Point{X: 7, Z: 1}) {
		t.Fatalf("agent 0 not at spawn after reset: %+v", w.Agents()[0].Mover().Cell())
	}
}

func TestContactDetection(t *testing.T) {
	w := testWorld(t)
	agentCell := w.Agents()[0].Mover().Cell()
	w.SetTrackedCell(agentCell, grid.Vec2{X: 1, Z: 0})

	contacts := w.Advance(1.0 / 60)
	found := false
	for _, c := range contacts {
		if c.AgentID == w.Agents()[0].ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected contact with co-located tracked agent, got %v", contacts)
	}
}

func TestWorldPublishesEvents(t *testing.T) {
	var events []logging.Event
	capture := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		events = append(events, event)
	})
	w := testWorld(t, WithPublisher(capture))

	byType := func(want logging.EventType) int {
		count := 0
		for _, event := range events {
			if event.Type == want {
				count++
			}
		}
		return count
	}

	if byType(logging.EventLevelLoaded) != 1 {
		t.Fatalf("expected one level.loaded event, got %d", byType(logging.EventLevelLoaded))
	}
	if byType(logging.EventAgentSpawned) != 2 {
		t.Fatalf("expected two agent.spawned events, got %d", byType(logging.EventAgentSpawned))
	}
	for _, event := range events {
		if event.Type == logging.EventAgentSpawned && event.Extra["spawn"] == nil {
			t.Fatalf("agent.spawned missing spawn annotation: %+v", event)
		}
	}

	w.Reset()
	if byType(logging.EventLevelReset) != 1 {
		t.Fatalf("expected one level.reset event, got %d", byType(logging.EventLevelReset))
	}

	w.Kill(w.Agents()[0].ID)
	if byType(logging.EventAgentStateChange) == 0 {
		t.Fatalf("expected state-change events after kill")
	}
}
