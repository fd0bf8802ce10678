//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"quizify/internal/config"
	"quizify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: QUIZIFY_TEST_DSN=postgres://... go test -tags=integration ./internal/db/...
func openTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	dsn := os.Getenv("QUIZIFY_TEST_DSN")
	if dsn == "" {
		t.Skip("QUIZIFY_TEST_DSN not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := Open(ctx, config.DatabaseConfig{Driver: driver, DSN: dsn})
	if err != nil {
		t.Skipf("Postgres not reachable: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testChunks() ([]models.Chunk, [][]float32) {
	chunks := []models.Chunk{
		{Content: "cells", Source: "bio.pdf", PageNumber: 1, ChunkID: 1, Ordinal: 0},
		{Content: "mitochondria", Source: "bio.pdf", PageNumber: 1, ChunkID: 2, Ordinal: 1},
		{Content: "ribosomes", Source: "bio.pdf", PageNumber: 2, ChunkID: 1, Ordinal: 2},
	}
	vectors := [][]float32{{0, 1, 0}, {1, 0, 0}, {1, 0, 0}}
	return chunks, vectors
}

func TestStore_BuildQueryDrop(t *testing.T) {
	for _, driver := range []string{"pgdriver", "pq"} {
		t.Run(driver, func(t *testing.T) {
			store := openTestStore(t, driver)
			ctx := context.Background()

			chunks, vectors := testChunks()
			coll, err := store.Build(ctx, chunks, vectors)
			require.NoError(t, err)
			assert.Equal(t, 3, coll.Count())

			results, err := coll.Query(ctx, []float32{1, 0, 0}, 2)
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, 1, results[0].Chunk.Ordinal)
			assert.Equal(t, 2, results[1].Chunk.Ordinal)
			assert.InDelta(t, 1.0, results[0].Score, 1e-6)
			assert.Equal(t, "mitochondria", results[0].Chunk.Content)

			require.NoError(t, coll.Drop(ctx))
			_, err = coll.Query(ctx, []float32{1, 0, 0}, 1)
			assert.ErrorIs(t, err, models.ErrNotInitialized)
		})
	}
}

func TestStore_BuildRejectsBadInput(t *testing.T) {
	store := openTestStore(t, "pgdriver")
	ctx := context.Background()

	_, err := store.Build(ctx, nil, nil)
	assert.ErrorIs(t, err, models.ErrEmptyInput)

	chunks, _ := testChunks()
	_, err = store.Build(ctx, chunks, [][]float32{{1, 0, 0}})
	assert.Error(t, err)
}
