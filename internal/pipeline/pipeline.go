package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizify/internal/chromemdb"
	"quizify/internal/config"
	"quizify/internal/db"
	"quizify/internal/llmservice"
	"quizify/internal/models"
	"quizify/internal/parser"
	"quizify/internal/quiz"
	"quizify/internal/rag"
	"quizify/internal/retry"

	"github.com/rs/zerolog/log"
)

// IndexResult describes one indexing run.
type IndexResult struct {
	Pages      []models.PageText
	Chunks     int
	Dropped    int
	Collection rag.Collection
	Duration   time.Duration
}

// Builder turns embedded chunks into a queryable collection.
type Builder func(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (rag.Collection, error)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// MemoryBuilder keeps collections in process memory.
func MemoryBuilder() Builder {
	return func(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (rag.Collection, error) {
		coll, err := chromemdb.Build(ctx, chunks, vectors)
		if err != nil {
			return nil, err
		}
		return coll, nil
	}
}

// StoreBuilder keeps collections in Postgres.
func StoreBuilder(store *db.Store) Builder {
	return func(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (rag.Collection, error) {
		coll, err := store.Build(ctx, chunks, vectors)
		if err != nil {
			return nil, err
		}
		return coll, nil
	}
}

// Pipeline wires document ingestion, indexing, retrieval and quiz generation.
type Pipeline struct {
	processor *parser.Processor
	embedder  Embedder
	build     Builder
	rag       *rag.RAG
	generator *quiz.Generator
	cfg       *config.Config
}

func New(processor *parser.Processor, embedder Embedder, llm llmservice.Completer, build Builder, cfg *config.Config) *Pipeline {
	r := rag.NewRAG(embedder, cfg.Retry)
	return &Pipeline{
		processor: processor,
		embedder:  embedder,
		build:     build,
		rag:       r,
		generator: quiz.NewGenerator(r, llm, cfg),
		cfg:       cfg,
	}
}

// Index reads the files and builds a new collection from their text. On an
// ingestion failure the pages read before the failing file are returned in
// the result.
func (p *Pipeline) Index(ctx context.Context, files []parser.File) (*IndexResult, error) {
	start := time.Now()
	result := &IndexResult{}

	pages, err := p.processor.Ingest(ctx, files)
	result.Pages = pages
	if err != nil {
		return result, err
	}

	all := parser.Split(pages, p.cfg.RAG.ChunkSize, p.cfg.RAG.ChunkOverlap)
	chunks := make([]models.Chunk, 0, len(all))
	for _, c := range all {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		chunks = append(chunks, c)
	}
	result.Dropped = len(all) - len(chunks)
	if len(chunks) == 0 {
		return result, fmt.Errorf("%w: no text found in %d pages", models.ErrEmptyInput, len(pages))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := p.embed(ctx, texts)
	if err != nil {
		return result, err
	}

	coll, err := p.build(ctx, chunks, vectors)
	if err != nil {
		return result, fmt.Errorf("failed to build collection: %w", err)
	}
	result.Collection = coll
	result.Chunks = len(chunks)
	result.Duration = time.Since(start)

	log.Info().
		Int("pages", len(pages)).
		Int("chunks", result.Chunks).
		Int("blank_chunks", result.Dropped).
		Dur("duration", result.Duration).
		Msg("Indexed documents")
	return result, nil
}

// embed sends texts in batch_size groups so a failure only retries its own group.
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	size := p.cfg.EmbedLLM.BatchSize
	if size <= 0 {
		size = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		var batch [][]float32
		err := retry.Do(ctx, p.cfg.Retry, func() error {
			var err error
			batch, err = p.embedder.EmbedBatch(ctx, texts[start:end])
			return err
		})
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// Generate builds a question bank on topic from coll.
func (p *Pipeline) Generate(ctx context.Context, topic string, count int, coll rag.Collection) (models.QuestionBank, error) {
	return p.generator.Generate(ctx, topic, count, coll)
}

// Search returns the k chunks closest to query.
func (p *Pipeline) Search(ctx context.Context, coll rag.Collection, query string, k int) ([]models.ScoredChunk, error) {
	return p.rag.Retrieve(ctx, coll, query, k)
}

const dropTimeout = 10 * time.Second

// Drop releases coll and logs a failure. It still runs after ctx is
// cancelled so an interrupted run does not leave a table behind.
func Drop(ctx context.Context, coll rag.Collection) {
	if coll == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dropTimeout)
	defer cancel()

	if err := coll.Drop(ctx); err != nil {
		log.Warn().Err(err).Msg("Error dropping collection")
	}
}
