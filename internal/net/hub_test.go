package net

import (
	"testing"
)

func TestDrainReturnsQueuedCommands(t *testing.T) {
	hub := NewHub(nil)

	hub.Enqueue(Command{Type: CommandFrighten})
	hub.Enqueue(Command{Type: CommandKill, AgentID: "a1"})

	drained := hub.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(drained))
	}
	if drained[0].Type != CommandFrighten || drained[1].AgentID != "a1" {
		t.Fatalf("unexpected drain order: %+v", drained)
	}

	if again := hub.Drain(); len(again) != 0 {
		t.Fatalf("expected empty drain, got %v", again)
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	hub := NewHub(nil)
	for i := 0; i < maxPendingCommands+10; i++ {
		hub.Enqueue(Command{Type: CommandReset})
	}
	if got := len(hub.Drain()); got != maxPendingCommands {
		t.Fatalf("expected queue capped at %d, got %d", maxPendingCommands, got)
	}
}
