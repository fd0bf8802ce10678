package retry

import (
	"context"
	"errors"

	"quizify/internal/config"
	"quizify/internal/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Do runs op with exponential backoff. Only embedding and LLM service
// failures are retried; any other error is returned immediately.
func Do(ctx context.Context, cfg config.RetryConfig, op func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return backoff.Permanent(err)
		}
		log.Debug().Err(err).Int("attempt", attempt).Msg("transient service error")
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = 0

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx))
}

// Transient reports whether err came from an external service call.
func Transient(err error) bool {
	return errors.Is(err, models.ErrEmbeddingService) || errors.Is(err, models.ErrLLMService)
}
