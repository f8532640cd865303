package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/testgen/internal/model"
)

func TestSessionRecordAndScore(t *testing.T) {
	qs := threeQuestions()
	s := NewSession("Ana", model.Filter{Topic: "Math"}, qs)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Record(1, "4"))
	require.NoError(t, s.RecordOption(2, 3)) // "7", wrong

	a, ok := s.Answer(2)
	require.True(t, ok)
	assert.Equal(t, "7", a)
	_, ok = s.Answer(3)
	assert.False(t, ok)

	_, sum, err := s.Score()
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Correct)
	assert.Equal(t, 1, sum.Incorrect)
	assert.Equal(t, 1, sum.Omitted)
	assert.InDelta(t, 0.15, sum.Total, 1e-9)
}

func TestSessionRejectsInvalidAnswers(t *testing.T) {
	s := NewSession("", model.Filter{}, threeQuestions())

	assert.ErrorIs(t, s.Record(99, "4"), ErrUnknownQuestion)
	assert.ErrorIs(t, s.Record(1, "42"), ErrInvalidOption)
	assert.ErrorIs(t, s.RecordOption(1, 0), ErrInvalidOption)
	assert.ErrorIs(t, s.RecordOption(1, 5), ErrInvalidOption)
	assert.ErrorIs(t, s.RecordOption(99, 1), ErrUnknownQuestion)
	assert.Empty(t, s.Answers())
}

func TestSessionLastAnswerWinsAndClear(t *testing.T) {
	s := NewSession("", model.Filter{}, threeQuestions())
	require.NoError(t, s.Record(1, "3"))
	require.NoError(t, s.Record(1, "4"))
	assert.Equal(t, map[int]string{1: "4"}, s.Answers())

	s.Clear(1)
	_, ok := s.Answer(1)
	assert.False(t, ok)
}

func TestSessionRecordAll(t *testing.T) {
	s := NewSession("", model.Filter{}, threeQuestions())
	require.NoError(t, s.RecordOption(1, 2))
	require.NoError(t, s.RecordOption(3, 1))

	err := s.RecordAll(map[int]int{1: 3, 2: 2, 3: 9})
	assert.ErrorIs(t, err, ErrInvalidOption)
	err = s.RecordAll(map[int]int{1: 3, 99: 1})
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	assert.Equal(t, map[int]string{1: "4", 3: "8"}, s.Answers(), "rejected batch must not change answers")

	require.NoError(t, s.RecordAll(map[int]int{1: 1, 2: 2, 3: 0}))
	assert.Equal(t, map[int]string{1: "3", 2: "6"}, s.Answers())
}

func TestSessionDuplicateTextKeepsSeparateSlots(t *testing.T) {
	qs := []model.Question{
		{ID: 4, Text: "Same?", Options: [4]string{"a", "b", "c", "d"}, Correct: 1},
		{ID: 9, Text: "Same?", Options: [4]string{"a", "b", "c", "d"}, Correct: 2},
	}
	s := NewSession("", model.Filter{}, qs)
	require.NoError(t, s.Record(4, "a"))
	require.NoError(t, s.Record(9, "b"))

	_, sum, err := s.Score()
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Correct)
}

func TestSessionCopiesQuestions(t *testing.T) {
	qs := threeQuestions()
	s := NewSession("", model.Filter{}, qs)
	qs[0].Text = "changed"
	assert.Equal(t, "2+2?", s.Questions[0].Text)

	answers := s.Answers()
	answers[1] = "x"
	_, ok := s.Answer(1)
	assert.False(t, ok)
}
