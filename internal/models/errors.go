package models

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput       = errors.New("no documents found")
	ErrNotInitialized   = errors.New("collection has not been created")
	ErrEmptyBank        = errors.New("question bank is empty")
	ErrValidation       = errors.New("invalid quiz question")
	ErrEmbeddingService = errors.New("embedding service failure")
	ErrLLMService       = errors.New("llm service failure")
)

// IngestionError reports the file that could not be turned into page text.
type IngestionError struct {
	File string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("failed to ingest %s: %v", e.File, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// ShortfallError is returned with a partial question bank when some slots
// exhausted their attempts.
type ShortfallError struct {
	Requested int
	Generated int
	Err       error
}

func (e *ShortfallError) Error() string {
	msg := fmt.Sprintf("%d of %d questions generated", e.Generated, e.Requested)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShortfallError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}
