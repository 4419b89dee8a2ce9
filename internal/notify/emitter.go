package notify

import (
	"context"
	"log/slog"
	"sync"
)

// LogEmitter writes every event to the logger.
type LogEmitter struct {
	logger *slog.Logger
}

func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger.With("component", "events")}
}

func (e *LogEmitter) Emit(ctx context.Context, name string, payload map[string]any) {
	e.logger.InfoContext(ctx, "event", "name", name, "payload", payload)
}

// Multi forwards each event to every emitter in order.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, name string, payload map[string]any) {
	for _, e := range m {
		if e != nil {
			e.Emit(ctx, name, payload)
		}
	}
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, name string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: name, Payload: payload})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Named returns the recorded events with the given name.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
