package session

import (
	"quizify/internal/models"
)

// Direction moves the cursor through the bank.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Session walks a question bank as a ring. It is not safe for concurrent use.
type Session struct {
	bank   models.QuestionBank
	cursor int
}

// New copies bank so later changes by the caller do not affect the session.
func New(bank models.QuestionBank) (*Session, error) {
	if len(bank) == 0 {
		return nil, models.ErrEmptyBank
	}
	owned := make(models.QuestionBank, len(bank))
	copy(owned, bank)
	return &Session{bank: owned}, nil
}

func (s *Session) Len() int { return len(s.bank) }

func (s *Session) Index() int { return s.cursor }

func (s *Session) Current() models.QuizQuestion {
	return s.bank[s.cursor]
}

func (s *Session) Next() models.QuizQuestion {
	return s.Advance(Forward)
}

func (s *Session) Previous() models.QuizQuestion {
	return s.Advance(Backward)
}

// Advance moves the cursor by direction steps, wrapping at either end.
func (s *Session) Advance(direction Direction) models.QuizQuestion {
	s.cursor = s.wrap(s.cursor + int(direction))
	return s.Current()
}

// Restore sets the cursor from a previously saved value, which may be out of
// range or negative.
func (s *Session) Restore(cursor int) {
	s.cursor = s.wrap(cursor)
}

// Answer reports whether choice is the correct index for the current question.
func (s *Session) Answer(choice int) bool {
	return choice == s.bank[s.cursor].Answer
}

func (s *Session) wrap(i int) int {
	n := len(s.bank)
	return ((i % n) + n) % n
}

// Label gives the display letter for choice i.
func Label(i int) string {
	return models.ChoiceLabel(i)
}
