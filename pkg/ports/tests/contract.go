// Package tests holds reusable contract suites for ports implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandkit/strand/pkg/domain"
	"github.com/strandkit/strand/pkg/ports"
)

// ChainStoreContractTest is a reusable test suite that verifies an
// adapter complies with ports.ChainStore.
func ChainStoreContractTest(t *testing.T, store ports.ChainStore) {
	t.Helper()

	ctx := context.Background()
	chainID := "contract-test-chain-" + time.Now().Format("20060102150405")

	definition := map[string]any{
		"nodes": []any{
			map[string]any{"id": "a", "ref": "echo"},
		},
		"edges":    []any{},
		"main_in":  "a/text",
		"main_out": "a/out",
	}

	t.Run("Save and Load", func(t *testing.T) {
		doc := &ports.ChainDocument{
			ID:         chainID,
			Name:       "contract chain",
			Definition: definition,
		}
		err := store.Save(ctx, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, chainID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, chainID, loaded.ID)
		assert.Equal(t, "contract chain", loaded.Name)
		assert.Equal(t, "a/text", loaded.Definition["main_in"])
	})

	t.Run("Load returns independent copies", func(t *testing.T) {
		first, err := store.Load(ctx, chainID)
		require.NoError(t, err)
		first.Definition["main_in"] = "tampered"

		second, err := store.Load(ctx, chainID)
		require.NoError(t, err)
		assert.Equal(t, "a/text", second.Definition["main_in"],
			"mutating a loaded copy must not affect the stored document")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+chainID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, &ports.ChainDocument{ID: chainID, Definition: definition})
		require.NoError(t, err)

		err = store.Delete(ctx, chainID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, chainID)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load after Delete should return ErrNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := chainID + "-1"
		id2 := chainID + "-2"
		_ = store.Save(ctx, &ports.ChainDocument{ID: id1, Definition: definition})
		_ = store.Save(ctx, &ports.ChainDocument{ID: id2, Definition: definition})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		chains, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, chains, id1)
		assert.Contains(t, chains, id2)
	})
}
