package models

import (
	"fmt"
	"strings"
)

type Choice struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// QuizQuestion is one multiple-choice item. Answer indexes into Choices.
type QuizQuestion struct {
	Question string   `json:"question"`
	Choices  []Choice `json:"choices"`
	Answer   int      `json:"answer"`
}

type QuestionBank []QuizQuestion

// Validate reports the first structural problem with the question.
func (q QuizQuestion) Validate(maxChoices int) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question is empty", ErrValidation)
	}
	if len(q.Choices) < 2 || len(q.Choices) > maxChoices {
		return fmt.Errorf("%w: got %d choices, want between 2 and %d", ErrValidation, len(q.Choices), maxChoices)
	}
	for i, c := range q.Choices {
		if strings.TrimSpace(c.Value) == "" {
			return fmt.Errorf("%w: choice %d is empty", ErrValidation, i)
		}
	}
	if q.Answer < 0 || q.Answer >= len(q.Choices) {
		return fmt.Errorf("%w: answer index %d out of range [0, %d)", ErrValidation, q.Answer, len(q.Choices))
	}
	return nil
}

// ChoiceLabel returns the display letter for the i-th choice.
func ChoiceLabel(i int) string {
	return string(rune(FirstChoiceLabel + i))
}
