package models

import "fmt"

// PageText is the plain text of one PDF page.
type PageText struct {
	Source     string
	PageNumber int
	Text       string
}

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Content    string
	Source     string
	PageNumber int
	ChunkID    int
	Ordinal    int
}

// ScoredChunk is a retrieval hit. Score is informational only.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// CheckEmbeddings verifies there is one non-empty vector per chunk and that
// all vectors share a dimension, which it returns.
func CheckEmbeddings(chunks []Chunk, vectors [][]float32) (int, error) {
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("got %d embeddings for %d chunks", len(vectors), len(chunks))
	}
	if len(vectors) == 0 {
		return 0, ErrEmptyInput
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("embedding for chunk %d is empty", chunks[0].Ordinal)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("embedding for chunk %d has %d dimensions, expected %d", chunks[i].Ordinal, len(v), dim)
		}
	}
	return dim, nil
}
