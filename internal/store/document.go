package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/famdo/internal/model"
)

// ErrNotLoaded is returned when the document is used before Load.
var ErrNotLoaded = errors.New("document not loaded")

// DocumentStore caches the household document after the first load and
// writes it back whole on every save. Callers serialize access.
type DocumentStore struct {
	backend Backend
	key     string
	logger  *slog.Logger
	doc     *model.Document
}

func NewDocumentStore(backend Backend, key string, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		backend: backend,
		key:     key,
		logger:  logger.With("component", "store"),
	}
}

// Load returns the cached document, reading it from the backend on first use
// and creating an empty one when nothing has been persisted yet.
func (s *DocumentStore) Load(ctx context.Context) (*model.Document, error) {
	if s.doc != nil {
		return s.doc, nil
	}
	return s.Reload(ctx)
}

// Reload discards the cache and reads the document again.
func (s *DocumentStore) Reload(ctx context.Context) (*model.Document, error) {
	data, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		s.logger.Info("no stored document, starting empty", "key", s.key)
		s.doc = model.NewDocument()
		return s.doc, nil
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	s.doc = &doc
	return s.doc, nil
}

// Data returns the loaded document without touching the backend.
func (s *DocumentStore) Data() (*model.Document, error) {
	if s.doc == nil {
		return nil, ErrNotLoaded
	}
	return s.doc, nil
}

// Replace swaps the cached document for doc without persisting it.
func (s *DocumentStore) Replace(doc *model.Document) {
	s.doc = doc
}

// Save writes the whole document. It does nothing if no document is loaded.
func (s *DocumentStore) Save(ctx context.Context) error {
	if s.doc == nil {
		return nil
	}
	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return err
	}
	return nil
}

// Delete removes the persisted document and drops the cache.
func (s *DocumentStore) Delete(ctx context.Context) error {
	if err := s.backend.Remove(ctx, s.key); err != nil {
		return err
	}
	s.doc = nil
	return nil
}
