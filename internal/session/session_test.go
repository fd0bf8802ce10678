package session

import (
	"fmt"
	"testing"

	"quizify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBank(n int) models.QuestionBank {
	bank := make(models.QuestionBank, n)
	for i := range bank {
		bank[i] = models.QuizQuestion{
			Question: fmt.Sprintf("Q%d", i),
			Choices:  []models.Choice{{Key: "A", Value: "x"}, {Key: "B", Value: "y"}},
			Answer:   i % 2,
		}
	}
	return bank
}

func TestNew_EmptyBank(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, models.ErrEmptyBank)

	_, err = New(models.QuestionBank{})
	assert.ErrorIs(t, err, models.ErrEmptyBank)
}

func TestSession_NextWrapsAround(t *testing.T) {
	s, err := New(testBank(3))
	require.NoError(t, err)

	assert.Equal(t, "Q0", s.Current().Question)
	assert.Equal(t, "Q1", s.Next().Question)
	assert.Equal(t, "Q2", s.Next().Question)
	assert.Equal(t, "Q0", s.Next().Question)
	assert.Equal(t, 0, s.Index())
}

func TestSession_PreviousFromStart(t *testing.T) {
	s, err := New(testBank(4))
	require.NoError(t, err)

	assert.Equal(t, "Q3", s.Previous().Question)
	assert.Equal(t, 3, s.Index())
	assert.Equal(t, "Q2", s.Advance(Backward).Question)
}

func TestSession_FullCycleReturnsToStart(t *testing.T) {
	for n := 1; n <= 5; n++ {
		s, err := New(testBank(n))
		require.NoError(t, err)
		s.Restore(n - 1)
		for i := 0; i < n; i++ {
			s.Next()
		}
		assert.Equal(t, n-1, s.Index(), "bank of %d", n)
	}
}

func TestSession_SingleQuestion(t *testing.T) {
	s, err := New(testBank(1))
	require.NoError(t, err)

	assert.Equal(t, "Q0", s.Next().Question)
	assert.Equal(t, "Q0", s.Previous().Question)
	assert.Equal(t, 0, s.Index())
}

func TestSession_Restore(t *testing.T) {
	s, err := New(testBank(3))
	require.NoError(t, err)

	tests := []struct {
		cursor, want int
	}{
		{0, 0}, {2, 2}, {3, 0}, {7, 1}, {-1, 2}, {-4, 2},
	}
	for _, tt := range tests {
		s.Restore(tt.cursor)
		assert.Equal(t, tt.want, s.Index(), "restore %d", tt.cursor)
	}
}

func TestSession_AnswerDoesNotMove(t *testing.T) {
	s, err := New(testBank(3))
	require.NoError(t, err)
	s.Next()

	assert.True(t, s.Answer(1))
	assert.False(t, s.Answer(0))
	assert.False(t, s.Answer(5))
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, "Q1", s.Current().Question)
}

func TestNew_CopiesBank(t *testing.T) {
	bank := testBank(2)
	s, err := New(bank)
	require.NoError(t, err)

	bank[0].Question = "changed"
	assert.Equal(t, "Q0", s.Current().Question)
	assert.Equal(t, 2, s.Len())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "A", Label(0))
	assert.Equal(t, "D", Label(3))
}
