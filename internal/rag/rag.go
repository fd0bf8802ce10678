package rag

import (
	"context"
	"fmt"
	"strings"

	"quizify/internal/config"
	"quizify/internal/models"
	"quizify/internal/retry"

	"github.com/rs/zerolog/log"
)

// Collection is a built vector index. Both the in-memory and the Postgres
// stores satisfy it.
type Collection interface {
	Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error)
	Count() int
	Drop(ctx context.Context) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type RAG struct {
	embedder Embedder
	retry    config.RetryConfig
}

func NewRAG(embedder Embedder, retryConfig config.RetryConfig) *RAG {
	return &RAG{embedder: embedder, retry: retryConfig}
}

// Retrieve embeds the topic and returns the k most similar chunks.
func (r *RAG) Retrieve(ctx context.Context, coll Collection, topic string, k int) ([]models.ScoredChunk, error) {
	if coll == nil {
		return nil, models.ErrNotInitialized
	}
	if coll.Count() == 0 {
		return nil, models.ErrEmptyInput
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	var queryEmbedding []float32
	err := retry.Do(ctx, r.retry, func() error {
		var err error
		queryEmbedding, err = r.embedder.Embed(ctx, topic)
		return err
	})
	if err != nil {
		return nil, err
	}

	docs, err := coll.Query(ctx, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("topic", topic).Int("k", k).Int("hits", len(docs)).Msg("Retrieved context")
	return docs, nil
}

// Context joins the retrieved chunk contents in rank order.
func Context(docs []models.ScoredChunk) string {
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = doc.Chunk.Content
	}
	return strings.Join(parts, models.ContextSeparator)
}
