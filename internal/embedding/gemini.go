package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiEmbedder adapts a Gemini embedding model to the langchaingo
// embeddings.EmbedderClient interface.
type geminiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

func newGeminiEmbedder(ctx context.Context, apiKey, model string) (*geminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiEmbedder{client: client, model: client.EmbeddingModel(model)}, nil
}

// CreateEmbedding sends texts as a single batch request. Callers keep
// batches within maxGeminiBatch.
func (g *geminiEmbedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	batch := g.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	resp, err := g.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("gemini returned no embedding for text %d", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (g *geminiEmbedder) Close() error {
	return g.client.Close()
}
