package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"quizify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(text string) models.PageText {
	return models.PageText{Source: "doc.pdf", PageNumber: 1, Text: text}
}

func TestSplit_ShortAndEmptyPages(t *testing.T) {
	chunks := Split([]models.PageText{page("short page"), page(""), page("   ")}, 100, 20)

	require.Len(t, chunks, 3)
	assert.Equal(t, "short page", chunks[0].Content)
	assert.Equal(t, "", chunks[1].Content)
	assert.Equal(t, "   ", chunks[2].Content)
	for i, c := range chunks {
		assert.Equal(t, i, c.Ordinal)
		assert.Equal(t, 1, c.ChunkID)
	}
}

func TestSplit_SlidingWindow(t *testing.T) {
	text := strings.Repeat("abcdefghij", 25) // 250 characters
	chunks := Split([]models.PageText{page(text)}, 100, 20)

	// starts at 0, 80, 160; the last window ends at 250
	require.Len(t, chunks, 3)
	assert.Equal(t, text[0:100], chunks[0].Content)
	assert.Equal(t, text[80:180], chunks[1].Content)
	assert.Equal(t, text[160:250], chunks[2].Content)

	for i := 0; i+1 < len(chunks); i++ {
		cur, next := chunks[i].Content, chunks[i+1].Content
		assert.Equal(t, cur[len(cur)-20:], next[:20], "chunks %d and %d must share the overlap", i, i+1)
		assert.Equal(t, i+1, chunks[i].ChunkID)
	}
}

func TestSplit_NeverExceedsMaxSize(t *testing.T) {
	for _, size := range []int{1, 7, 50, 999, 1000, 1001, 4321} {
		text := strings.Repeat("x", size)
		for _, c := range Split([]models.PageText{page(text)}, 1000, 200) {
			assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 1000)
		}
	}
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 15)
	chunks := Split([]models.PageText{page(text)}, 10, 2)

	require.Len(t, chunks, 2)
	assert.Equal(t, 10, utf8.RuneCountInString(chunks[0].Content))
	assert.Equal(t, 7, utf8.RuneCountInString(chunks[1].Content))
}

func TestSplit_DoesNotCrossPages(t *testing.T) {
	pages := []models.PageText{
		{Source: "a.pdf", PageNumber: 1, Text: strings.Repeat("a", 150)},
		{Source: "a.pdf", PageNumber: 2, Text: strings.Repeat("b", 50)},
	}
	chunks := Split(pages, 100, 10)

	require.Len(t, chunks, 3)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 1, chunks[1].PageNumber)
	assert.Equal(t, 2, chunks[2].PageNumber)
	assert.NotContains(t, chunks[1].Content, "b")
	assert.Equal(t, 1, chunks[2].ChunkID)
	assert.Equal(t, 2, chunks[2].Ordinal)
}

func TestSplit_IdempotentOnOwnOutput(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 60)
	first := Split([]models.PageText{page(text)}, 300, 50)

	for _, c := range first {
		again := Split([]models.PageText{page(c.Content)}, 300, 50)
		require.Len(t, again, 1)
		assert.Equal(t, c.Content, again[0].Content)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	pages := []models.PageText{page(strings.Repeat("lorem ipsum ", 200))}
	assert.Equal(t, Split(pages, 256, 64), Split(pages, 256, 64))
}

func TestChunkContent_ClampsParameters(t *testing.T) {
	text := strings.Repeat("z", 30)

	// overlap >= size falls back to half the window
	chunks := chunkContent(text, 10, 10)
	require.Len(t, chunks, 5)
	assert.Len(t, chunks[0], 10)

	// negative overlap behaves as no overlap
	assert.Len(t, chunkContent(text, 10, -5), 3)

	// non-positive size uses the default window
	assert.Equal(t, []string{text}, chunkContent(text, 0, 0))
}

func TestSplit_InvalidUTF8(t *testing.T) {
	raw := "aaaaa\xffbbbbb"
	clean := strings.ToValidUTF8(raw, "\uFFFD")

	chunks := Split([]models.PageText{page(raw)}, 8, 2)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Content))
		assert.Contains(t, clean, c.Content)
	}

	single := Split([]models.PageText{page(raw)}, 100, 10)
	require.Len(t, single, 1)
	assert.Equal(t, clean, single[0].Content)
}
