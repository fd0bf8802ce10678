package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizify/internal/config"
	"quizify/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/googleai/vertex"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer is the text-in, text-out boundary to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// NewCompleter builds a Completer for the configured provider.
func NewCompleter(ctx context.Context, llmConfig *config.LLMConfig) (Completer, error) {
	log.Debug().Interface("llmConfig", map[string]any{
		"provider":  llmConfig.Provider,
		"base_url":  llmConfig.BaseURL,
		"model":     llmConfig.Model,
		"json_mode": llmConfig.JSONMode,
	}).Msg("Loaded inference config")

	var (
		llm llms.Model
		err error
	)
	switch llmConfig.Provider {
	case "ollama":
		opts := []ollama.Option{
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		}
		if llmConfig.JSONMode {
			opts = append(opts, ollama.WithFormat("json"))
		}
		llm, err = ollama.New(opts...)
	case "openai":
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		llm, err = openai.New(opts...)
	case "vertex":
		llm, err = vertex.New(ctx,
			googleai.WithCloudProject(llmConfig.Project),
			googleai.WithCloudLocation(llmConfig.Location),
			googleai.WithDefaultModel(llmConfig.Model),
		)
	case "gemini":
		return NewGemini(ctx, llmConfig.Key, llmConfig.Model, llmConfig.Timeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", llmConfig.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("error initializing llm: %w", err)
	}
	return NewLangChain(llm, llmConfig.Timeout, llmConfig.JSONMode), nil
}

// LangChain calls any langchaingo model.
type LangChain struct {
	llm      llms.Model
	timeout  time.Duration
	jsonMode bool
}

func NewLangChain(llm llms.Model, timeout time.Duration, jsonMode bool) *LangChain {
	return &LangChain{llm: llm, timeout: timeout, jsonMode: jsonMode}
}

func (l *LangChain) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	opts := []llms.CallOption{
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	}
	if l.jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	res, err := l.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrLLMService, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", models.ErrLLMService)
	}
	return res.Choices[0].Content, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
