package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Clock abstracts event timestamping so tests can pin time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Sink consumes routed events.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// Router fans events out to its sinks from a single dispatch goroutine.
// Publishing never blocks the simulation tick: when the queue is full the
// event is dropped and counted.
type Router struct {
	queue       chan Event
	sinks       []Sink
	clock       Clock
	fallback    *log.Logger
	minSeverity Severity
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	closed      atomic.Bool

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
}

// RouterStats summarizes router throughput.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// NewRouter starts a router over the given sinks.
func NewRouter(clock Clock, cfg Config, sinks ...Sink) *Router {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		queue:       make(chan Event, bufferSize),
		sinks:       sinks,
		clock:       clock,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
		minSeverity: cfg.MinimumSeverity,
		cancel:      cancel,
	}
	r.wg.Add(1)
	go r.dispatch(ctx)
	return r
}

// Publish enqueues an event, stamping the router clock when the event has no
// timestamp of its own.
func (r *Router) Publish(_ context.Context, event Event) {
	if r == nil || r.closed.Load() {
		return
	}
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	select {
	case r.queue <- event:
		r.eventsTotal.Add(1)
	default:
		r.droppedTotal.Add(1)
	}
}

// Stats reports cumulative publish and drop counts.
func (r *Router) Stats() RouterStats {
	if r == nil {
		return RouterStats{}
	}
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Close drains the queue and closes every sink.
func (r *Router) Close(ctx context.Context) error {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cancel()
	r.wg.Wait()
	var firstErr error
	for _, sink := range r.sinks {
		if err := sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) dispatch(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event := <-r.queue:
					r.forward(event)
				default:
					return
				}
			}
		case event := <-r.queue:
			r.forward(event)
		}
	}
}

func (r *Router) forward(event Event) {
	for _, sink := range r.sinks {
		if err := sink.Write(event); err != nil {
			r.fallback.Printf("sink write failed: %v", err)
		}
	}
}
