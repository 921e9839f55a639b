package logging

import (
	"context"
	"time"
)

type EventType string

// Event families emitted by the simulation core.
const (
	EventLevelLoaded      EventType = "level.loaded"
	EventLevelReset       EventType = "level.reset"
	EventAgentSpawned     EventType = "agent.spawned"
	EventAgentStateChange EventType = "agent.state_change"
	EventAgentContact     EventType = "agent.contact"
	EventPathUnreachable  EventType = "path.unreachable"
)

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

type EntityKind string

const (
	EntityKindUnknown EntityKind = "unknown"
	EntityKindAgent   EntityKind = "agent"
	EntityKindTracked EntityKind = "tracked"
	EntityKindLevel   EntityKind = "level"
)

// Event is one structured record of simulation activity.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Severity Severity       `json:"severity"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// EntityRef identifies the subject of an event.
type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Publisher accepts events from the simulation.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// NopPublisher discards every event. Core packages accept it so tests and
// headless runs need no router.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithExtra returns a copy of the event carrying one more annotation.
func (e Event) WithExtra(key string, value any) Event {
	extra := make(map[string]any, len(e.Extra)+1)
	for k, v := range e.Extra {
		extra[k] = v
	}
	extra[key] = value
	e.Extra = extra
	return e
}
