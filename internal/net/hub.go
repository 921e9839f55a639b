// Package net exposes the simulation to spectator clients over websockets
// and funnels their trigger commands back into the tick loop.
package net

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"mazebound/server/internal/sim"
)

// CommandType enumerates the external triggers a client may send.
type CommandType string

const (
	CommandFrighten CommandType = "frighten"
	CommandCalm     CommandType = "calm"
	CommandKill     CommandType = "kill"
	CommandRespawn  CommandType = "respawn"
	CommandReset    CommandType = "reset"
	CommandTracked  CommandType = "tracked"
)

// Command is one decoded client trigger.
type Command struct {
	Type     CommandType `json:"type"`
	AgentID  string      `json:"agentId,omitempty"`
	X        float64     `json:"x,omitempty"`
	Z        float64     `json:"z,omitempty"`
	HeadingX float64     `json:"headingX,omitempty"`
	HeadingZ float64     `json:"headingZ,omitempty"`
}

// maxPendingCommands bounds the queue between client readers and the tick
// loop; excess commands are dropped rather than blocking a reader.
const maxPendingCommands = 256

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks spectator sessions and queues their commands for the
// single-threaded simulation loop.
type Hub struct {
	mu       sync.Mutex
	sessions map[*session]struct{}
	commands chan Command
	logger   *log.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		sessions: make(map[*session]struct{}),
		commands: make(chan Command, maxPendingCommands),
		logger:   logger,
	}
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s] = struct{}{}
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s)
}

// Enqueue queues a command for the next tick, dropping it when the queue is
// full.
func (h *Hub) Enqueue(cmd Command) {
	select {
	case h.commands <- cmd:
	default:
		h.logger.Printf("dropping %s command: queue full", cmd.Type)
	}
}

// Drain returns every command queued since the previous drain. Called once
// per tick by the simulation loop.
func (h *Hub) Drain() []Command {
	var drained []Command
	for {
		select {
		case cmd := <-h.commands:
			drained = append(drained, cmd)
		default:
			return drained
		}
	}
}

// Broadcast sends a snapshot to every connected spectator, dropping
// sessions whose writes fail.
func (h *Hub) Broadcast(snapshot sim.Snapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.Printf("failed to marshal snapshot: %v", err)
		return
	}

	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		if err := s.write(data); err != nil {
			h.unregister(s)
			s.conn.Close()
		}
	}
}

// SessionCount reports connected spectators.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
