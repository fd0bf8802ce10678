package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizify/internal/config"
	"quizify/internal/llmservice"
	"quizify/internal/models"
	"quizify/internal/rag"
	"quizify/internal/retry"

	"github.com/rs/zerolog/log"
)

type Retriever interface {
	Retrieve(ctx context.Context, coll rag.Collection, topic string, k int) ([]models.ScoredChunk, error)
}

// Generator produces a bank of validated questions on a topic.
type Generator struct {
	retriever Retriever
	llm       llmservice.Completer
	parser    *Parser
	quiz      config.QuizConfig
	retry     config.RetryConfig
	topK      int
}

func NewGenerator(retriever Retriever, llm llmservice.Completer, cfg *config.Config) *Generator {
	return &Generator{
		retriever: retriever,
		llm:       llm,
		parser:    NewParser(cfg.Quiz.MaxChoices),
		quiz:      cfg.Quiz,
		retry:     cfg.Retry,
		topK:      cfg.RAG.TopK,
	}
}

// Generate fills count slots. A slot whose attempts all fail validation is
// dropped and reported through a *models.ShortfallError alongside the
// questions that were produced. A service failure that outlives its retries
// stops generation and is returned with the partial bank.
func (g *Generator) Generate(ctx context.Context, topic string, count int, coll rag.Collection) (models.QuestionBank, error) {
	if coll == nil || coll.Count() == 0 {
		return nil, models.ErrNotInitialized
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is empty", models.ErrEmptyInput)
	}
	if count < 1 || count > g.quiz.MaxQuestions {
		return nil, fmt.Errorf("question count must be between 1 and %d, got %d", g.quiz.MaxQuestions, count)
	}

	bank := make(models.QuestionBank, 0, count)
	seen := make(map[string]bool, count)
	var lastInvalid error

	for slot := 0; slot < count; slot++ {
		docs, err := g.retriever.Retrieve(ctx, coll, topic, g.topK)
		if err != nil {
			return bank, err
		}
		prompt := g.prompt(topic, rag.Context(docs), bank)

		q, err := g.fillSlot(ctx, slot, prompt, seen)
		if err != nil {
			if !errors.Is(err, models.ErrValidation) {
				return bank, err
			}
			lastInvalid = err
			log.Warn().Err(err).Int("slot", slot).Msg("Dropping question slot")
			continue
		}
		seen[normalize(q.Question)] = true
		bank = append(bank, q)
	}

	log.Info().Str("topic", topic).Int("requested", count).Int("generated", len(bank)).Msg("Generated questions")
	if len(bank) < count {
		return bank, &models.ShortfallError{Requested: count, Generated: len(bank), Err: lastInvalid}
	}
	return bank, nil
}

// fillSlot asks for one question up to MaxAttempts times with the same prompt.
func (g *Generator) fillSlot(ctx context.Context, slot int, prompt string, seen map[string]bool) (models.QuizQuestion, error) {
	lastErr := fmt.Errorf("%w: no attempts allowed", models.ErrValidation)
	for attempt := 1; attempt <= g.quiz.MaxAttempts; attempt++ {
		var raw string
		err := retry.Do(ctx, g.retry, func() error {
			var err error
			raw, err = g.llm.Complete(ctx, prompt, g.quiz.Temperature, g.quiz.MaxOutputTokens)
			return err
		})
		if err != nil {
			return models.QuizQuestion{}, err
		}

		q, err := g.parser.Parse(raw)
		if err == nil && seen[normalize(q.Question)] {
			err = fmt.Errorf("%w: duplicate question %q", models.ErrValidation, q.Question)
		}
		if err == nil {
			return q, nil
		}
		lastErr = err
		log.Debug().Err(err).Int("slot", slot).Int("attempt", attempt).Str("response", raw).Msg("Rejected model response")
	}
	return models.QuizQuestion{}, lastErr
}

func (g *Generator) prompt(topic, context string, bank models.QuestionBank) string {
	prompt := fmt.Sprintf(models.QuizPromptTemplate, g.quiz.MaxChoices, topic, context)
	if len(bank) > 0 {
		asked := make([]string, len(bank))
		for i, q := range bank {
			asked[i] = "- " + q.Question
		}
		prompt += fmt.Sprintf(models.AvoidRepeatTemplate, strings.Join(asked, "\n"))
	}
	log.Debug().Str("prompt", prompt).Msg("Built quiz prompt")
	return prompt
}

func normalize(question string) string {
	return strings.ToLower(strings.Join(strings.Fields(question), " "))
}
