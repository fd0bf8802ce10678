package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"quizify/internal/helper"
	"quizify/internal/models"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
)

// metadata keys stored alongside every document
const (
	metaSource  = "source"
	metaPage    = "page"
	metaChunkID = "chunk_id"
	metaOrdinal = "ordinal"
)

var errPrecomputed = errors.New("embeddings are computed before they reach the collection")

// Collection is an in-memory vector collection built once from a set of
// chunks and their embeddings.
type Collection struct {
	db         *chromem.DB
	collection *chromem.Collection
	dim        int
}

// Build creates a fresh collection holding one document per chunk.
func Build(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (*Collection, error) {
	if len(chunks) == 0 {
		return nil, models.ErrEmptyInput
	}
	dim, err := models.CheckEmbeddings(chunks, vectors)
	if err != nil {
		return nil, err
	}

	name, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	c, err := db.CreateCollection(name, nil, func(context.Context, string) ([]float32, error) {
		return nil, errPrecomputed
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(chunk.Ordinal),
			Content:   chunk.Content,
			Embedding: vectors[i],
			Metadata: map[string]string{
				metaSource:  chunk.Source,
				metaPage:    strconv.Itoa(chunk.PageNumber),
				metaChunkID: strconv.Itoa(chunk.ChunkID),
				metaOrdinal: strconv.Itoa(chunk.Ordinal),
			},
		}
	}

	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %v", err)
	}

	log.Debug().Str("collection", name).Int("documents", c.Count()).Int("dim", dim).Msg("Built collection")
	return &Collection{db: db, collection: c, dim: dim}, nil
}

// Query returns at most k chunks ordered by descending cosine similarity,
// ties broken by chunk ordinal.
func (c *Collection) Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if c == nil || c.collection == nil {
		return nil, models.ErrNotInitialized
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(vector) != c.dim {
		return nil, fmt.Errorf("query vector has %d dimensions, collection has %d", len(vector), c.dim)
	}

	// chromem's own ordering does not break ties, so rank the whole collection.
	results, err := c.collection.QueryEmbedding(ctx, vector, c.collection.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		chunk, err := toChunk(res)
		if err != nil {
			return nil, err
		}
		scored = append(scored, models.ScoredChunk{Chunk: chunk, Score: float64(res.Similarity)})
	}
	Rank(scored)

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (c *Collection) Count() int {
	if c == nil || c.collection == nil {
		return 0
	}
	return c.collection.Count()
}

// Drop releases the collection. Further queries return ErrNotInitialized.
func (c *Collection) Drop(ctx context.Context) error {
	if c == nil || c.collection == nil {
		return nil
	}
	if err := c.db.DeleteCollection(c.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	c.collection = nil
	return nil
}

// Rank sorts by descending score, then ascending ordinal.
func Rank(scored []models.ScoredChunk) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.Ordinal < scored[j].Chunk.Ordinal
	})
}

func toChunk(res chromem.Result) (models.Chunk, error) {
	ints := make(map[string]int, 3)
	for _, key := range []string{metaPage, metaChunkID, metaOrdinal} {
		n, err := strconv.Atoi(res.Metadata[key])
		if err != nil {
			return models.Chunk{}, fmt.Errorf("document %s has bad %s metadata: %v", res.ID, key, err)
		}
		ints[key] = n
	}
	return models.Chunk{
		Content:    res.Content,
		Source:     res.Metadata[metaSource],
		PageNumber: ints[metaPage],
		ChunkID:    ints[metaChunkID],
		Ordinal:    ints[metaOrdinal],
	}, nil
}
