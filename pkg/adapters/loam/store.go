// Package loam adapts a Loam document repository into a read-only
// ChainStore. Each chain is one document: frontmatter metadata carries
// the name and description, the content body carries the YAML or JSON
// chain description. The engine never modifies chain files on disk,
// only reads them.
package loam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"gopkg.in/yaml.v3"

	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/ports"
)

// ErrReadOnly is returned by the mutating ChainStore operations; chain
// files are edited on disk, not through the engine.
var ErrReadOnly = errors.New("loam chain store is read-only")

// ChainMetadata is the frontmatter of a chain document.
type ChainMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
}

// Store implements the read side of ports.ChainStore over a Loam
// repository.
type Store struct {
	Repo *loam.TypedRepository[ChainMetadata]
}

// New creates a new Loam adapter from a typed repository.
func New(repo *loam.TypedRepository[ChainMetadata]) *Store {
	return &Store{Repo: repo}
}

// Open initializes a read-only Loam repository at path and wraps it.
// Strict mode keeps numeric types consistent across document formats.
func Open(path string) (*Store, error) {
	repo, err := loam.Init(path,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ChainMetadata](repo)), nil
}

// Load retrieves a chain document by id. The document content is parsed
// as a YAML or JSON chain description.
func (s *Store) Load(ctx context.Context, id string) (*ports.ChainDocument, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("chain %q: %w", id, domain.ErrNotFound)
	}

	var definition map[string]any
	if err := yaml.Unmarshal([]byte(doc.Content), &definition); err != nil {
		return nil, fmt.Errorf("chain %q: invalid description: %w", id, err)
	}

	return &ports.ChainDocument{
		ID:          trimExtension(doc.ID),
		Name:        doc.Data.Name,
		Description: doc.Data.Description,
		Definition:  definition,
	}, nil
}

// List returns the ids of every chain document in the repository.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, trimExtension(doc.ID))
	}
	return ids, nil
}

// trimExtension strips the file extension Loam keeps in document ids,
// so chains are addressed by name regardless of the on-disk format.
func trimExtension(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}

// Save is not supported; chain files are edited on disk.
func (s *Store) Save(ctx context.Context, doc *ports.ChainDocument) error {
	return ErrReadOnly
}

// Delete is not supported; chain files are edited on disk.
func (s *Store) Delete(ctx context.Context, id string) error {
	return ErrReadOnly
}
