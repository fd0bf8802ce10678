package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"quizify/internal/config"
	"quizify/internal/db"
	"quizify/internal/embedding"
	"quizify/internal/helper"
	"quizify/internal/llmservice"
	"quizify/internal/models"
	"quizify/internal/parser"
	"quizify/internal/pipeline"
	"quizify/internal/session"
	"quizify/internal/tui"
)

const defaultConfigFilePath = "./configs/config.yaml"

var (
	configFilePath string
	files          []string
	topic          string
	count          int
	query          string
	topK           int
)

var rootCmd = &cobra.Command{
	Use:           "quizify",
	Short:         "Generate multiple-choice quizzes from PDF documents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Index PDFs, generate questions on a topic and take the quiz",
	RunE:  runQuiz,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Index PDFs and print generated questions as JSON",
	RunE:  runGenerate,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Index PDFs and print the chunks closest to a query",
	RunE:  runSearch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", defaultConfigFilePath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&files, "file", nil, "PDF file to index (repeatable)")

	for _, c := range []*cobra.Command{quizCmd, generateCmd} {
		c.Flags().StringVar(&topic, "topic", "", "Topic the questions should cover")
		c.Flags().IntVar(&count, "count", 5, "Number of questions to generate")
		_ = c.MarkFlagRequired("topic")
	}
	searchCmd.Flags().StringVar(&query, "query", "", "Text to search for")
	searchCmd.Flags().IntVar(&topK, "k", 0, "Number of chunks to return (default rag.top_k)")
	_ = searchCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(quizCmd, generateCmd, searchCmd)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("quizify failed")
		stop()
		os.Exit(1)
	}
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
}

// app holds what every subcommand needs once the configuration is loaded.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func newApp(ctx context.Context, withLLM bool) (*app, error) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error loading config %s: %w", configFilePath, err)
	}
	setupLogger(cfg.LogLevel)

	a := &app{cfg: cfg}

	embedder, err := embedding.NewEmbedder(ctx, &cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("error initializing embedder: %w", err)
	}
	a.closers = append(a.closers, embedder.Close)

	var llm llmservice.Completer
	if withLLM {
		llm, err = llmservice.NewCompleter(ctx, &cfg.InferenceLLM)
		if err != nil {
			return nil, fmt.Errorf("error initializing llm: %w", err)
		}
		if c, ok := llm.(interface{ Close() error }); ok {
			a.closers = append(a.closers, c.Close)
		}
	}

	build := pipeline.MemoryBuilder()
	if cfg.VectorStore.Type == "pgvector" {
		store, err := db.Open(ctx, cfg.VectorStore.Database)
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		build = pipeline.StoreBuilder(store)
	}

	a.pipeline = pipeline.New(parser.NewProcessor(nil), embedder, llm, build, cfg)
	return a, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("Error releasing resource")
		}
	}
}

func readFiles(paths []string) ([]parser.File, error) {
	if len(paths) == 0 {
		return nil, errors.New("at least one --file is required")
	}
	out := make([]parser.File, 0, len(paths))
	for _, p := range paths {
		data, err := helper.ReadFile(p, os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", p, err)
		}
		out = append(out, parser.File{Name: filepath.Base(p), Data: data})
	}
	return out, nil
}

// index builds a collection from the --file arguments. The caller must drop it.
func (a *app) index(ctx context.Context) (*pipeline.IndexResult, error) {
	input, err := readFiles(files)
	if err != nil {
		return nil, err
	}
	result, err := a.pipeline.Index(ctx, input)
	if err != nil {
		var ingestErr *models.IngestionError
		if errors.As(err, &ingestErr) {
			return nil, fmt.Errorf("could not read %s, %d pages were read from earlier files: %w", ingestErr.File, len(result.Pages), err)
		}
		return nil, fmt.Errorf("error indexing documents: %w", err)
	}
	return result, nil
}

func (a *app) generate(ctx context.Context) (models.QuestionBank, string, error) {
	result, err := a.index(ctx)
	if err != nil {
		return nil, "", err
	}
	defer pipeline.Drop(ctx, result.Collection)

	bank, err := a.pipeline.Generate(ctx, topic, count, result.Collection)
	var shortfall *models.ShortfallError
	switch {
	case errors.As(err, &shortfall):
		log.Warn().Err(err).Msg("Some questions could not be generated")
		if len(bank) == 0 {
			return nil, "", err
		}
		return bank, fmt.Sprintf("Only %d of %d questions could be generated", shortfall.Generated, shortfall.Requested), nil
	case err != nil:
		return nil, "", fmt.Errorf("error generating questions: %w", err)
	}
	return bank, "", nil
}

func runQuiz(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	bank, banner, err := a.generate(ctx)
	if err != nil {
		return err
	}
	s, err := session.New(bank)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(tui.New(s, banner)).Run()
	if err != nil {
		return fmt.Errorf("error running quiz: %w", err)
	}
	if m, ok := final.(tui.Model); ok {
		correct, answered := m.Score()
		fmt.Printf("Score: %d/%d (%d questions)\n", correct, answered, s.Len())
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	bank, _, err := a.generate(ctx)
	if err != nil {
		return err
	}
	helper.PrettyPrint(bank)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	k := topK
	if k == 0 {
		k = a.cfg.RAG.TopK
	}

	result, err := a.index(ctx)
	if err != nil {
		return err
	}
	defer pipeline.Drop(ctx, result.Collection)

	hits, err := a.pipeline.Search(ctx, result.Collection, query, k)
	if err != nil {
		return fmt.Errorf("error searching: %w", err)
	}

	fmt.Printf("Query: %s\n\n", query)
	for i, hit := range hits {
		fmt.Printf("%d. [%.3f] %s p.%d #%d\n%s\n\n", i+1, hit.Score, hit.Chunk.Source, hit.Chunk.PageNumber, hit.Chunk.ChunkID, hit.Chunk.Content)
	}
	return nil
}
