// Package memory provides an in-memory ChainStore, primarily for tests
// and single-process embedding.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/ports"
)

// Store implements ports.ChainStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*ports.ChainDocument
	mu   sync.RWMutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string]*ports.ChainDocument),
	}
}

// Save persists the document in memory. The stored copy is independent
// of the caller's document.
func (s *Store) Save(ctx context.Context, doc *ports.ChainDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("chain document has no id")
	}
	copied := *doc
	if doc.Definition != nil {
		copied.Definition = deepcopy.Copy(doc.Definition).(map[string]any)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.ID] = &copied
	return nil
}

// Load retrieves the document. A copy is returned so the caller cannot
// mutate stored state through shared references.
func (s *Store) Load(ctx context.Context, id string) (*ports.ChainDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("chain %q: %w", id, domain.ErrNotFound)
	}

	ret := *doc
	if doc.Definition != nil {
		ret.Definition = deepcopy.Copy(doc.Definition).(map[string]any)
	}
	return &ret, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored chain ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
