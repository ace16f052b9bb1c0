package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandkit/strand/internal/testutils"
	"github.com/strandkit/strand/pkg/domain"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	doc := core.Document{
		ID: "greet.md",
		Content: `---
name: Greeter
description: Upper-cases a greeting
---
nodes:
  - id: shout
    ref: uppercase
edges: []
main_in: shout/text
main_out: shout/out`,
	}
	require.NoError(t, repo.Save(ctx, doc))

	return New(loam.NewTypedRepository[ChainMetadata](repo))
}

func TestStore_Load(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc, err := store.Load(ctx, "greet")
	require.NoError(t, err)

	assert.Equal(t, "greet", doc.ID)
	assert.Equal(t, "Greeter", doc.Name)
	assert.Equal(t, "Upper-cases a greeting", doc.Description)
	assert.Equal(t, "shout/text", doc.Definition["main_in"])

	nodes, ok := doc.Definition["nodes"].([]any)
	require.True(t, ok, "nodes should parse as a list")
	assert.Len(t, nodes, 1)
}

func TestStore_Load_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store := setupStore(t)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, ids)
}

func TestStore_ReadOnly(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.Save(ctx, nil)
	assert.ErrorIs(t, err, ErrReadOnly)

	err = store.Delete(ctx, "greet")
	assert.ErrorIs(t, err, ErrReadOnly)
}
