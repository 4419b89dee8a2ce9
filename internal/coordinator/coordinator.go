// Package coordinator owns the household document and runs every operation
// against it: the chore lifecycle, recurrence, points and rewards, and the
// plain collection edits around them.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/famdo/internal/metrics"
	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/notify"
	"github.com/dukerupert/famdo/internal/store"
)

// Coordinator serializes every read-modify-write on the document. Refused
// operations (unknown id, wrong state, not a parent) return a nil result and
// a nil error; only storage failures come back as errors.
type Coordinator struct {
	mu        sync.Mutex
	store     *store.DocumentStore
	listeners *notify.Listeners
	emitter   notify.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Coordinator)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func New(st *store.DocumentStore, listeners *notify.Listeners, emitter notify.Emitter, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     st,
		listeners: listeners,
		emitter:   emitter,
		logger:    logger.With("component", "coordinator"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the document from storage. It must run before any operation.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	c.logger.Info("document loaded",
		"members", len(doc.Members),
		"chores", len(doc.Chores),
		"rewards", len(doc.Rewards),
	)
	return nil
}

// Subscribe registers fn to receive a snapshot after every persisted change.
func (c *Coordinator) Subscribe(fn notify.Listener) (unsubscribe func()) {
	return c.listeners.Subscribe(fn)
}

// Data returns a snapshot of the whole document.
func (c *Coordinator) Data() (*model.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.store.Data()
	if err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Export serializes the current document.
func (c *Coordinator) Export() ([]byte, error) {
	doc, err := c.Data()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Import replaces the whole document with data, persists it and notifies.
func (c *Coordinator) Import(ctx context.Context, data []byte) error {
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		c.metrics.Operation("import", metrics.ResultError)
		return fmt.Errorf("decode document: %w", err)
	}
	_, err := c.mutate(ctx, "import", func(t *tx) bool {
		t.replace(&doc)
		return true
	})
	return err
}

// tx is the working state of one operation while the lock is held.
type tx struct {
	doc     *model.Document
	now     time.Time
	events  []notify.Event
	replace func(*model.Document)
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func (t *tx) emit(name string, payload map[string]any) {
	t.events = append(t.events, notify.Event{Name: name, Payload: payload})
}

// parent resolves id to a member with the parent role, or nil.
func (t *tx) parent(id, action string) *model.Member {
	m := t.doc.Member(id)
	if m == nil || !m.IsParent() {
		t.logger.Warn("only parents can "+action, "member_id", id)
		return nil
	}
	return m
}

// mutate runs fn under the lock. When fn reports a change the document is
// saved, then events are emitted and listeners notified outside the lock.
func (c *Coordinator) mutate(ctx context.Context, op string, fn func(t *tx) bool) (bool, error) {
	c.mu.Lock()
	doc, err := c.store.Data()
	if err != nil {
		c.mu.Unlock()
		c.metrics.Operation(op, metrics.ResultError)
		return false, fmt.Errorf("%s: %w", op, err)
	}
	t := &tx{
		doc:     doc,
		now:     c.now(),
		logger:  c.logger,
		metrics: c.metrics,
	}
	t.replace = func(d *model.Document) {
		c.store.Replace(d)
		t.doc = d
	}
	if !fn(t) {
		c.mu.Unlock()
		c.metrics.Operation(op, metrics.ResultRefused)
		return false, nil
	}
	if err := c.store.Save(ctx); err != nil {
		c.mu.Unlock()
		c.metrics.Operation(op, metrics.ResultError)
		c.logger.Error("save failed, in-memory document is ahead of storage", "operation", op, "error", err)
		return false, fmt.Errorf("%s: %w", op, err)
	}
	snapshot := t.doc.Clone()
	c.mu.Unlock()

	c.metrics.Operation(op, metrics.ResultOK)
	for _, e := range t.events {
		if c.emitter != nil {
			c.emitter.Emit(ctx, e.Name, e.Payload)
		}
	}
	c.listeners.Publish(snapshot)
	return true, nil
}

// run is mutate for operations that return one entity. fn returns the
// entity inside the document, or nil to refuse; the caller gets a copy.
func run[T any](ctx context.Context, c *Coordinator, op string, fn func(t *tx) *T) (*T, error) {
	var out *T
	_, err := c.mutate(ctx, op, func(t *tx) bool {
		p := fn(t)
		if p == nil {
			return false
		}
		v := *p
		out = &v
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// removeByID deletes the element with the given id and reports whether one existed.
func removeByID[T any](items *[]*T, match func(*T) bool) bool {
	for i, item := range *items {
		if match(item) {
			*items = append((*items)[:i], (*items)[i+1:]...)
			return true
		}
	}
	return false
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
