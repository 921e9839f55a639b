package logging_test

import (
	"context"
	"testing"
	"time"

	"mazebound/server/logging"
	"mazebound/server/logging/sinks"
)

func TestRouterDeliversAndStampsEvents(t *testing.T) {
	sink := sinks.NewMemorySink()
	stamp := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	router := logging.NewRouter(logging.ClockFunc(func() time.Time { return stamp }), logging.DefaultConfig(), sink)

	event := logging.Event{
		Type:     logging.EventLevelLoaded,
		Severity: logging.SeverityInfo,
		Actor:    logging.EntityRef{ID: "arena", Kind: logging.EntityKindLevel},
	}.WithExtra("agents", 4)
	router.Publish(context.Background(), event)

	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 delivered event, got %d", len(events))
	}
	if events[0].Time != stamp {
		t.Fatalf("expected router clock stamp %v, got %v", stamp, events[0].Time)
	}
	if events[0].Extra["agents"] != 4 {
		t.Fatalf("extra annotation lost: %+v", events[0].Extra)
	}

	sink.Reset()
	if len(sink.Events()) != 0 {
		t.Fatalf("reset left events behind")
	}
}

func TestRouterFiltersBySeverity(t *testing.T) {
	sink := sinks.NewMemorySink()
	router := logging.NewRouter(nil, logging.Config{BufferSize: 16, MinimumSeverity: logging.SeverityWarn}, sink)

	router.Publish(context.Background(), logging.Event{Type: logging.EventPathUnreachable, Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: logging.EventAgentContact, Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: logging.EventLevelReset, Severity: logging.SeverityError})

	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the error event to pass the warn filter, got %d", len(events))
	}
	if events[0].Type != logging.EventLevelReset {
		t.Fatalf("unexpected surviving event %v", events[0].Type)
	}
}

// gateSink blocks writes until released, pinning the dispatch goroutine so a
// test can fill the router queue deterministically.
type gateSink struct {
	release chan struct{}
	inner   *sinks.MemorySink
}

func (s *gateSink) Write(event logging.Event) error {
	<-s.release
	return s.inner.Write(event)
}

func (s *gateSink) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

func TestRouterCountsDropsWhenQueueIsFull(t *testing.T) {
	gate := &gateSink{release: make(chan struct{}), inner: sinks.NewMemorySink()}
	router := logging.NewRouter(nil, logging.Config{BufferSize: 2, MinimumSeverity: logging.SeverityDebug}, gate)

	const published = 8
	for i := 0; i < published; i++ {
		router.Publish(context.Background(), logging.Event{Type: logging.EventAgentContact, Severity: logging.SeverityInfo})
	}

	close(gate.release)
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	stats := router.Stats()
	if stats.DroppedTotal == 0 {
		t.Fatalf("expected drops after %d publishes into a 2-slot queue", published)
	}
	if stats.EventsTotal+stats.DroppedTotal != published {
		t.Fatalf("accounting mismatch: %d accepted + %d dropped != %d published",
			stats.EventsTotal, stats.DroppedTotal, published)
	}
	if got := uint64(len(gate.inner.Events())); got != stats.EventsTotal {
		t.Fatalf("close must drain every accepted event: sink has %d, stats accepted %d", got, stats.EventsTotal)
	}
}

func TestRouterIgnoresPublishAfterClose(t *testing.T) {
	sink := sinks.NewMemorySink()
	router := logging.NewRouter(nil, logging.DefaultConfig(), sink)
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	router.Publish(context.Background(), logging.Event{Type: logging.EventLevelReset, Severity: logging.SeverityInfo})

	if len(sink.Events()) != 0 {
		t.Fatalf("closed router must not deliver")
	}
	if stats := router.Stats(); stats.EventsTotal != 0 {
		t.Fatalf("closed router must not count events, got %+v", stats)
	}
}
