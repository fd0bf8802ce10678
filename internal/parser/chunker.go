package parser

import (
	"strings"

	"quizify/internal/models"
)

const (
	defaultChunkSize    = 1000 // characters
	defaultChunkOverlap = 200  // characters

	replacementChar = "\uFFFD"
)

// Split cuts every page into overlapping windows of at most maxSize
// characters. Chunk i of a page starts at i*(maxSize-overlap), so neighbours
// share exactly overlap characters. Chunks never span pages and a page that
// fits in one window, including an empty one, yields a single chunk.
func Split(pages []models.PageText, maxSize, overlap int) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		for i, content := range chunkContent(page.Text, maxSize, overlap) {
			chunks = append(chunks, models.Chunk{
				Content:    content,
				Source:     page.Source,
				PageNumber: page.PageNumber,
				ChunkID:    i + 1,
				Ordinal:    len(chunks),
			})
		}
	}
	return chunks
}

// chunk content into chunks with maxChars and overlapChars
func chunkContent(content string, maxChars, overlapChars int) []string {
	if maxChars <= 0 {
		maxChars = defaultChunkSize
		if overlapChars == 0 {
			overlapChars = defaultChunkOverlap
		}
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	// invalid bytes become U+FFFD here so every chunk is a substring of the
	// page text the caller sees after Ingest
	content = strings.ToValidUTF8(content, replacementChar)
	runes := []rune(content)
	if len(runes) <= maxChars {
		return []string{content}
	}

	step := maxChars - overlapChars
	var chunks []string
	for start := 0; ; start += step {
		end := min(start+maxChars, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
