package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizify/internal/config"
	"quizify/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/googleai/vertex"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxGeminiBatch is the most texts the Gemini API accepts in one batch request.
const maxGeminiBatch = 100

// Client produces one vector per text through an external embedding service.
// It does not retry; callers decide how to handle ErrEmbeddingService.
type Client struct {
	embedder  embeddings.Embedder
	model     string
	timeout   time.Duration
	batchSize int
	closer    func() error
}

// NewClient sends at most batchSize texts per request, each request under its
// own timeout. A batchSize <= 0 sends everything at once.
func NewClient(embedder embeddings.Embedder, model string, timeout time.Duration, batchSize int) *Client {
	return &Client{embedder: embedder, model: model, timeout: timeout, batchSize: batchSize}
}

// NewEmbedder builds a Client for the configured provider.
func NewEmbedder(ctx context.Context, cfg *config.LLMConfig) (*Client, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        cfg.Provider,
		"base_url":        cfg.BaseURL,
		"embedding_model": cfg.Model,
		"project":         cfg.Project,
		"location":        cfg.Location,
	}).Msg("Loaded embedding config")

	var (
		client embeddings.EmbedderClient
		err    error
	)
	switch cfg.Provider {
	case "ollama":
		client, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	case "openai":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		client, err = openai.New(opts...)
	case "vertex":
		client, err = vertex.New(ctx,
			googleai.WithCloudProject(cfg.Project),
			googleai.WithCloudLocation(cfg.Location),
			googleai.WithDefaultEmbeddingModel(cfg.Model),
		)
	case "gemini":
		g, err := newGeminiEmbedder(ctx, cfg.Key, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("error initializing embedder: %w", err)
		}
		c, err := newBatchedClient(g, cfg.Model, cfg.Timeout, geminiBatchSize(cfg.BatchSize))
		if err != nil {
			g.Close()
			return nil, err
		}
		c.closer = g.Close
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("error initializing embedding llm: %w", err)
	}

	return newBatchedClient(client, cfg.Model, cfg.Timeout, cfg.BatchSize)
}

func newBatchedClient(client embeddings.EmbedderClient, model string, timeout time.Duration, batchSize int) (*Client, error) {
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithBatchSize(batchSize))
	if err != nil {
		return nil, fmt.Errorf("error creating embedder: %w", err)
	}
	return NewClient(embedder, model, timeout, batchSize), nil
}

func geminiBatchSize(configured int) int {
	if configured <= 0 {
		return maxGeminiBatch
	}
	return min(configured, maxGeminiBatch)
}

func (c *Client) Model() string { return c.model }

// Close releases the provider connection when it holds one.
func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	if closer, ok := c.embedder.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Embed returns the vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", models.ErrEmbeddingService)
	}
	return vector, nil
}

// EmbedBatch returns one vector per text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	size := c.batchSize
	if size <= 0 {
		size = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	log.Debug().Int("texts", len(texts)).Int("dimension", len(vectors[0])).Msg("Generated embeddings")
	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", models.ErrEmbeddingService, len(vectors), len(texts))
	}
	return vectors, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
