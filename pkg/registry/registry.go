// Package registry provides the discoverable catalogs of models and
// actions. Each registry maps string identifiers to registered entities,
// enforces identifier uniqueness, indexes entries by tag, and counts how
// often each identifier is retrieved. Get always hands out a deep copy:
// a caller's mutation of a retrieved entity can never corrupt the shared
// registration. Writes are serialized by a mutex per registry; reads are
// safe to run concurrently.
package registry

import (
	"fmt"
	"sync"

	"github.com/strandkit/strand/pkg/domain"
)

// registry is the shared core behind the typed registries.
type registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
	counter map[string]int
	tags    map[string][]string
	clone   func(T) T
	label   string // used in error messages, e.g. "model"
}

func newRegistry[T any](label string, clone func(T) T) *registry[T] {
	return &registry[T]{
		entries: make(map[string]T),
		counter: make(map[string]int),
		tags:    make(map[string][]string),
		clone:   clone,
		label:   label,
	}
}

func (r *registry[T]) register(id string, entity T, tags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; ok {
		return fmt.Errorf("%s %q: %w", r.label, id, domain.ErrDuplicateID)
	}
	r.entries[id] = entity
	for _, tag := range tags {
		r.tags[tag] = append(r.tags[tag], id)
	}
	return nil
}

// get increments the usage counter even when the lookup fails, matching
// the retrieval-attempt semantics of the counters.
func (r *registry[T]) get(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter[id]++
	entity, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.label, id, domain.ErrNotFound)
	}
	return r.clone(entity), nil
}

func (r *registry[T]) unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%s %q: %w", r.label, id, domain.ErrNotFound)
	}
	delete(r.entries, id)
	for tag, ids := range r.tags {
		for i, other := range ids {
			if other == id {
				r.tags[tag] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(r.tags[tag]) == 0 {
			delete(r.tags, tag)
		}
	}
	return nil
}

func (r *registry[T]) countFor(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counter[id]
}

func (r *registry[T]) getTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.tags))
	for tag := range r.tags {
		tags = append(tags, tag)
	}
	return tags
}

// list enumerates registered ids, optionally filtered to one tag. No
// counters are incremented.
func (r *registry[T]) list(tag string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tag != "" {
		return append([]string(nil), r.tags[tag]...)
	}
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// ModelRegistry catalogs registered models.
type ModelRegistry struct {
	core *registry[*domain.Model]
}

// NewModelRegistry creates an empty model registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{core: newRegistry("model", (*domain.Model).Clone)}
}

// Register stores the model under its id, indexing it under each of its
// tags. Fails with ErrDuplicateID if the id is taken.
func (r *ModelRegistry) Register(m *domain.Model) error {
	return r.core.register(m.ID, m, m.Tags)
}

// Get returns a deep copy of the model and increments its usage counter.
func (r *ModelRegistry) Get(id string) (*domain.Model, error) { return r.core.get(id) }

// Has reports whether the id is registered, without touching counters.
func (r *ModelRegistry) Has(id string) bool {
	r.core.mu.RLock()
	defer r.core.mu.RUnlock()
	_, ok := r.core.entries[id]
	return ok
}

// CountFor returns how many times the id has been retrieved.
func (r *ModelRegistry) CountFor(id string) int { return r.core.countFor(id) }

// Tags enumerates the registered tags.
func (r *ModelRegistry) Tags() []string { return r.core.getTags() }

// List enumerates registered ids, optionally filtered to one tag.
func (r *ModelRegistry) List(tag string) []string { return r.core.list(tag) }

// ActionRegistry catalogs programmatic action nodes.
type ActionRegistry struct {
	core *registry[*domain.Node]
}

// NewActionRegistry creates an empty programmatic action registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{core: newRegistry("action", (*domain.Node).Clone)}
}

// Register stores the node under its id. Fails with ErrDuplicateID if
// the id is taken.
func (r *ActionRegistry) Register(n *domain.Node) error {
	return r.core.register(n.ID, n, n.Tags)
}

// Get returns a deep copy of the node and increments its usage counter.
func (r *ActionRegistry) Get(id string) (*domain.Node, error) { return r.core.get(id) }

// CountFor returns how many times the id has been retrieved.
func (r *ActionRegistry) CountFor(id string) int { return r.core.countFor(id) }

// Tags enumerates the registered tags.
func (r *ActionRegistry) Tags() []string { return r.core.getTags() }

// List enumerates registered ids, optionally filtered to one tag.
func (r *ActionRegistry) List(tag string) []string { return r.core.list(tag) }

// ExternalRegister is the reserved AI action identifier meaning "build
// the node but do not store it in-process"; the caller persists it
// elsewhere.
const ExternalRegister = "db"

// AIActionRegistry catalogs AI action nodes. Unlike the other
// registries it supports unregistration and exempts the
// ExternalRegister sentinel from duplicate checks and storage.
type AIActionRegistry struct {
	core *registry[*domain.Node]
}

// NewAIActionRegistry creates an empty AI action registry.
func NewAIActionRegistry() *AIActionRegistry {
	return &AIActionRegistry{core: newRegistry("ai action", (*domain.Node).Clone)}
}

// Register stores the node under its id. The ExternalRegister sentinel
// id is accepted but never stored.
func (r *AIActionRegistry) Register(n *domain.Node) error {
	if n.ID == ExternalRegister {
		return nil
	}
	return r.core.register(n.ID, n, n.Tags)
}

// Get returns a deep copy of the node and increments its usage counter.
func (r *AIActionRegistry) Get(id string) (*domain.Node, error) { return r.core.get(id) }

// Unregister removes the entry and prunes it from every tag index.
func (r *AIActionRegistry) Unregister(id string) error { return r.core.unregister(id) }

// CountFor returns how many times the id has been retrieved.
func (r *AIActionRegistry) CountFor(id string) int { return r.core.countFor(id) }

// Tags enumerates the registered tags.
func (r *AIActionRegistry) Tags() []string { return r.core.getTags() }

// List enumerates registered ids, optionally filtered to one tag.
func (r *AIActionRegistry) List(tag string) []string { return r.core.list(tag) }
