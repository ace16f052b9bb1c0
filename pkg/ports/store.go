package ports

import (
	"context"
)

// ChainDocument is a persisted chain description: the serializable dag
// form consumed by the compiler, plus addressing metadata. The engine
// builds a live Chain from it per execution request.
type ChainDocument struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Definition  map[string]any `json:"definition" yaml:"definition"`
}

// ChainStore defines the interface for persisting chain descriptions.
// Implementations must return independent copies from Load so callers
// cannot mutate stored state through shared references.
type ChainStore interface {
	// Save persists the document under its id, overwriting any previous
	// version.
	Save(ctx context.Context, doc *ChainDocument) error

	// Load retrieves the document for the given id. Returns an error
	// wrapping domain.ErrNotFound if it does not exist.
	Load(ctx context.Context, id string) (*ChainDocument, error)

	// Delete removes the document for the given id.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored documents.
	List(ctx context.Context) ([]string, error)
}
