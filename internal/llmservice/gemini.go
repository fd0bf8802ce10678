package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizify/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini calls the Gemini API directly and asks for a JSON response body.
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

func NewGemini(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	g.model.SetTemperature(float32(temperature))
	g.model.SetMaxOutputTokens(int32(maxTokens))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrLLMService, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no content generated", models.ErrLLMService)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
