package sinks

import (
	"context"
	"sync"

	"mazebound/server/logging"
)

// MemorySink retains events in order for inspection by tests.
type MemorySink struct {
	mu     sync.Mutex
	events []logging.Event
}

// NewMemorySink builds an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemorySink) Close(context.Context) error {
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []logging.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logging.Event(nil), s.events...)
}

// Reset discards recorded events.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
