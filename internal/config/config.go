package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultChunkSize       = 1000
	defaultChunkOverlap    = 200
	defaultTopK            = 4
	defaultTimeout         = 60 * time.Second
	defaultTemperature     = 0.5
	defaultMaxOutputTokens = 250
	defaultMaxAttempts     = 3
	defaultMaxChoices      = 4
	defaultMaxQuestions    = 10
	defaultBatchSize       = 32
	defaultMaxRetries      = 2
)

type Config struct {
	LogLevel     string            `yaml:"log_level"`
	EmbedLLM     LLMConfig         `yaml:"embed_llm"`
	InferenceLLM LLMConfig         `yaml:"inference_llm"`
	RAG          RAGConfig         `yaml:"rag"`
	Quiz         QuizConfig        `yaml:"quiz"`
	Retry        RetryConfig       `yaml:"retry"`
	VectorStore  VectorStoreConfig `yaml:"vector_store"`
}

// LLMConfig describes one external model endpoint. Project and Location are
// passed through to the provider untouched.
type LLMConfig struct {
	Provider  string        `yaml:"provider"`
	BaseURL   string        `yaml:"base_url"`
	Key       string        `yaml:"key"`
	Model     string        `yaml:"model"`
	Project   string        `yaml:"project"`
	Location  string        `yaml:"location"`
	Timeout   time.Duration `yaml:"timeout"`
	BatchSize int           `yaml:"batch_size"`
	JSONMode  bool          `yaml:"json_mode"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type QuizConfig struct {
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	MaxAttempts     int     `yaml:"max_attempts"`
	MaxChoices      int     `yaml:"max_choices"`
	MaxQuestions    int     `yaml:"max_questions"`
}

// RetryConfig bounds the caller-side retries around embedding and LLM calls.
type RetryConfig struct {
	MaxRetries      int           `yaml:"max_retries"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

type VectorStoreConfig struct {
	Type     string         `yaml:"type"`
	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse expands ${VAR} references from the environment, decodes the YAML and
// fills in defaults.
func Parse(data []byte) (*Config, error) {
	cfg := newConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	cfg := newConfig()
	cfg.applyDefaults()
	return cfg
}

// newConfig presets the fields where zero is a meaningful setting, so a value
// written in the file survives decoding and only a missing key gets the default.
func newConfig() *Config {
	return &Config{
		Quiz:  QuizConfig{Temperature: defaultTemperature},
		Retry: RetryConfig{MaxRetries: defaultMaxRetries},
	}
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.EmbedLLM.applyDefaults("nomic-embed-text")
	c.InferenceLLM.applyDefaults("llama3.2")

	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = defaultChunkSize
		if c.RAG.ChunkOverlap == 0 {
			c.RAG.ChunkOverlap = defaultChunkOverlap
		}
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = defaultTopK
	}

	if c.Quiz.MaxOutputTokens == 0 {
		c.Quiz.MaxOutputTokens = defaultMaxOutputTokens
	}
	if c.Quiz.MaxAttempts == 0 {
		c.Quiz.MaxAttempts = defaultMaxAttempts
	}
	if c.Quiz.MaxChoices == 0 {
		c.Quiz.MaxChoices = defaultMaxChoices
	}
	if c.Quiz.MaxQuestions == 0 {
		c.Quiz.MaxQuestions = defaultMaxQuestions
	}

	if c.Retry.InitialInterval == 0 {
		c.Retry.InitialInterval = 500 * time.Millisecond
	}
	if c.Retry.MaxInterval == 0 {
		c.Retry.MaxInterval = 10 * time.Second
	}

	if c.VectorStore.Type == "" {
		c.VectorStore.Type = "memory"
	}
	if c.VectorStore.Database.Driver == "" {
		c.VectorStore.Database.Driver = "pgdriver"
	}
}

func (l *LLMConfig) applyDefaults(model string) {
	if l.Provider == "" {
		l.Provider = "ollama"
	}
	if l.Provider == "ollama" && l.BaseURL == "" {
		l.BaseURL = "http://localhost:11434"
	}
	if l.Model == "" {
		l.Model = model
	}
	if l.Timeout == 0 {
		l.Timeout = defaultTimeout
	}
	if l.BatchSize == 0 {
		l.BatchSize = defaultBatchSize
	}
}

// Validate rejects values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must be in [0, %d), got %d", c.RAG.ChunkSize, c.RAG.ChunkOverlap)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("rag.top_k must be positive, got %d", c.RAG.TopK)
	}
	if c.Quiz.Temperature < 0 || c.Quiz.Temperature > 2 {
		return fmt.Errorf("quiz.temperature must be in [0, 2], got %v", c.Quiz.Temperature)
	}
	if c.Quiz.MaxAttempts <= 0 {
		return fmt.Errorf("quiz.max_attempts must be positive, got %d", c.Quiz.MaxAttempts)
	}
	if c.Quiz.MaxChoices < 2 {
		return fmt.Errorf("quiz.max_choices must be at least 2, got %d", c.Quiz.MaxChoices)
	}
	if c.Quiz.MaxQuestions <= 0 {
		return fmt.Errorf("quiz.max_questions must be positive, got %d", c.Quiz.MaxQuestions)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	for name, l := range map[string]LLMConfig{"embed_llm": c.EmbedLLM, "inference_llm": c.InferenceLLM} {
		switch l.Provider {
		case "ollama", "openai", "vertex", "gemini":
		default:
			return fmt.Errorf("%s.provider: unsupported provider %q", name, l.Provider)
		}
	}
	switch c.VectorStore.Type {
	case "memory":
	case "pgvector":
		if c.VectorStore.Database.DSN == "" {
			return fmt.Errorf("vector_store.database.dsn is required for pgvector")
		}
		switch c.VectorStore.Database.Driver {
		case "pgdriver", "pq":
		default:
			return fmt.Errorf("vector_store.database.driver: unsupported driver %q", c.VectorStore.Database.Driver)
		}
	default:
		return fmt.Errorf("vector_store.type: unsupported type %q", c.VectorStore.Type)
	}
	return nil
}
