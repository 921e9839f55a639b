// Package simulation provides typed constructors for the event families the
// simulation core publishes.
package simulation

import (
	"mazebound/server/logging"
)

// LevelLoaded records a level entering service.
func LevelLoaded(tick uint64, name string, width, height, agents int) logging.Event {
	return logging.Event{
		Type:     logging.EventLevelLoaded,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: name, Kind: logging.EntityKindLevel},
		Severity: logging.SeverityInfo,
		Payload: map[string]any{
			"width":  width,
			"height": height,
			"agents": agents,
		},
	}
}

// LevelReset records a level returning to spawn conditions.
func LevelReset(tick uint64, name string) logging.Event {
	return logging.Event{
		Type:     logging.EventLevelReset,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: name, Kind: logging.EntityKindLevel},
		Severity: logging.SeverityInfo,
	}
}

// AgentSpawned records an agent entering the maze.
func AgentSpawned(tick uint64, agentID, personality string) logging.Event {
	return logging.Event{
		Type:     logging.EventAgentSpawned,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
		Payload:  map[string]any{"personality": personality},
	}
}

// AgentStateChange records a lifecycle transition.
func AgentStateChange(tick uint64, agentID, from, to string) logging.Event {
	return logging.Event{
		Type:     logging.EventAgentStateChange,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
		Payload:  map[string]any{"from": from, "to": to},
	}
}

// AgentContact records a bounding-box overlap between an agent and the
// tracked target.
func AgentContact(tick uint64, agentID string, x, z float64, vulnerable bool) logging.Event {
	return logging.Event{
		Type:     logging.EventAgentContact,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityInfo,
		Payload: map[string]any{
			"x":          x,
			"z":          z,
			"vulnerable": vulnerable,
		},
	}
}

// PathUnreachable records an agent holding position for want of a route.
func PathUnreachable(tick uint64, agentID string, targetX, targetZ int) logging.Event {
	return logging.Event{
		Type:     logging.EventPathUnreachable,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: agentID, Kind: logging.EntityKindAgent},
		Severity: logging.SeverityDebug,
		Payload:  map[string]any{"targetX": targetX, "targetZ": targetZ},
	}
}
