package llmservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizify/internal/config"
	"quizify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply    string
	err      error
	empty    bool
	opts     llms.CallOptions
	prompt   string
	deadline bool
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, o := range options {
		o(&f.opts)
	}
	_, f.deadline = ctx.Deadline()
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if text, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.prompt = text.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChain_Complete(t *testing.T) {
	fake := &fakeModel{reply: `{"question":"q"}`}
	c := NewLangChain(fake, time.Second, true)

	out, err := c.Complete(context.Background(), "make a question", 0.5, 250)
	require.NoError(t, err)

	assert.Equal(t, `{"question":"q"}`, out)
	assert.Equal(t, "make a question", fake.prompt)
	assert.Equal(t, 0.5, fake.opts.Temperature)
	assert.Equal(t, 250, fake.opts.MaxTokens)
	assert.True(t, fake.opts.JSONMode)
	assert.True(t, fake.deadline)
}

func TestLangChain_CompleteErrors(t *testing.T) {
	_, err := NewLangChain(&fakeModel{err: errors.New("503")}, time.Second, false).
		Complete(context.Background(), "p", 0.5, 250)
	assert.ErrorIs(t, err, models.ErrLLMService)

	_, err = NewLangChain(&fakeModel{empty: true}, time.Second, false).
		Complete(context.Background(), "p", 0.5, 250)
	assert.ErrorIs(t, err, models.ErrLLMService)
}

func TestNewCompleter(t *testing.T) {
	c, err := NewCompleter(context.Background(), &config.LLMConfig{
		Provider: "ollama",
		BaseURL:  "http://localhost:11434",
		Model:    "llama3.2",
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	assert.IsType(t, &LangChain{}, c)

	_, err = NewCompleter(context.Background(), &config.LLMConfig{Provider: "cohere"})
	assert.Error(t, err)

	_, err = NewCompleter(context.Background(), &config.LLMConfig{Provider: "gemini"})
	assert.Error(t, err, "gemini requires an api key")
}
