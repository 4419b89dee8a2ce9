package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukerupert/famdo/internal/model"
)

// Domain event names.
const (
	EventChoreCompleted  = "chore_completed"
	EventPointsUpdated   = "points_updated"
	EventRewardClaimed   = "reward_claimed"
	EventRewardFulfilled = "reward_fulfilled"
)

// Event is a domain event raised by a successful mutation.
type Event struct {
	Name    string
	Payload map[string]any
}

// Emitter publishes domain events. Delivery is fire-and-forget.
type Emitter interface {
	Emit(ctx context.Context, name string, payload map[string]any)
}

// Listener receives the document after every persisted change.
type Listener func(doc *model.Document)

// Listeners fans document changes out to subscribers. Callbacks run
// synchronously; a panicking listener is logged and skipped.
type Listeners struct {
	mu     sync.RWMutex
	next   int
	subs   map[int]Listener
	logger *slog.Logger
}

func NewListeners(logger *slog.Logger) *Listeners {
	return &Listeners{
		subs:   make(map[int]Listener),
		logger: logger.With("component", "listeners"),
	}
}

// Subscribe registers fn and returns a func that removes it.
func (l *Listeners) Subscribe(fn Listener) (unsubscribe func()) {
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
		})
	}
}

// Publish calls every subscriber with doc, in subscription order.
func (l *Listeners) Publish(doc *model.Document) {
	l.mu.RLock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	subs := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, l.subs[id])
	}
	l.mu.RUnlock()

	for _, fn := range subs {
		l.call(fn, doc)
	}
}

func (l *Listeners) call(fn Listener, doc *model.Document) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("listener panicked", "panic", r)
		}
	}()
	fn(doc)
}

func (l *Listeners) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs)
}
