package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Equal(t, 0.5, cfg.Quiz.Temperature)
	assert.Equal(t, 250, cfg.Quiz.MaxOutputTokens)
	assert.Equal(t, 3, cfg.Quiz.MaxAttempts)
	assert.Equal(t, 4, cfg.Quiz.MaxChoices)
	assert.Equal(t, 10, cfg.Quiz.MaxQuestions)
	assert.Equal(t, "ollama", cfg.EmbedLLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.InferenceLLM.Timeout)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
}

func TestParse_ExplicitZeroKept(t *testing.T) {
	cfg, err := Parse([]byte("quiz:\n  temperature: 0\nretry:\n  max_retries: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Quiz.Temperature)
	assert.Equal(t, 0, cfg.Retry.MaxRetries)
	assert.Equal(t, 250, cfg.Quiz.MaxOutputTokens)

	cfg, err = Parse([]byte("quiz:\n  max_attempts: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Quiz.Temperature)
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.Equal(t, 5, cfg.Quiz.MaxAttempts)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("QUIZIFY_TEST_KEY", "secret-token")

	cfg, err := Parse([]byte(`
inference_llm:
  provider: openai
  key: ${QUIZIFY_TEST_KEY}
  model: gpt-4o-mini
  timeout: 15s
embed_llm:
  provider: vertex
  model: textembedding-gecko@003
  project: demo-project
  location: us-central1
`))
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.InferenceLLM.Key)
	assert.Equal(t, 15*time.Second, cfg.InferenceLLM.Timeout)
	assert.Equal(t, "demo-project", cfg.EmbedLLM.Project)
	assert.Equal(t, "us-central1", cfg.EmbedLLM.Location)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"overlap not below size", "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{"negative overlap", "rag:\n  chunk_size: 100\n  chunk_overlap: -1\n"},
		{"temperature too high", "quiz:\n  temperature: 3\n"},
		{"unknown provider", "embed_llm:\n  provider: cohere\n"},
		{"unknown store", "vector_store:\n  type: redis\n"},
		{"pgvector without dsn", "vector_store:\n  type: pgvector\n"},
		{"bad driver", "vector_store:\n  type: pgvector\n  database:\n    dsn: postgres://x\n    driver: mysql\n"},
		{"malformed yaml", "rag: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag:\n  chunk_size: 500\n  chunk_overlap: 50\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
