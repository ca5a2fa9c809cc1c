package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examspark/examspark-backend/internal/model"
)

func sampleQuestions() []model.Question {
	return []model.Question{
		{
			Text:           "What is the capital of France?",
			Choices:        []string{"London", "Paris", "Berlin"},
			Type:           model.QuestionTypeSingle,
			CorrectAnswers: []string{"Paris"},
		},
		{
			Text:           "Which are primary colors?",
			Choices:        []string{"Red", "Green", "Blue", "Purple"},
			Type:           model.QuestionTypeMultiple,
			CorrectAnswers: []string{"Red", "Blue"},
		},
		{
			Text:           "What is the answer to everything?",
			Choices:        []string{"41", "42", "43"},
			Type:           model.QuestionTypeSingle,
			CorrectAnswers: []string{"42"},
		},
	}
}

func TestGradeAllCorrect(t *testing.T) {
	answers := model.AnswerMap{
		0: {"Paris"},
		1: {"Red", "Blue"},
		2: {"42"},
	}

	result := Grade(sampleQuestions(), answers)

	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 3, result.Total)
}

func TestGradePartiallyCorrect(t *testing.T) {
	answers := model.AnswerMap{
		0: {"London"},
		1: {"Red", "Blue"},
		2: {"42"},
	}

	result := Grade(sampleQuestions(), answers)

	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 3, result.Total)
}

func TestGradeUnansweredNeverScores(t *testing.T) {
	result := Grade(sampleQuestions(), model.AnswerMap{})

	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 3, result.Total)
}

func TestGradeEmptyExam(t *testing.T) {
	result := Grade(nil, model.AnswerMap{0: {"anything"}})

	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 0, result.Total)
}

func TestCorrectMultipleIsOrderInsensitive(t *testing.T) {
	q := sampleQuestions()[1]

	assert.True(t, Correct(q, []string{"Blue", "Red"}))
	assert.True(t, Correct(q, []string{"Red", "Blue"}))
}

func TestCorrectMultipleRequiresExactSet(t *testing.T) {
	q := sampleQuestions()[1]

	// Subset does not score.
	assert.False(t, Correct(q, []string{"Red"}))
	// Superset does not score either.
	assert.False(t, Correct(q, []string{"Red", "Blue", "Green"}))
	// A swap is wrong.
	assert.False(t, Correct(q, []string{"Red", "Green"}))
}

func TestCorrectMultipleIgnoresDuplicates(t *testing.T) {
	q := sampleQuestions()[1]

	assert.True(t, Correct(q, []string{"Red", "Blue", "Red"}))
}

func TestCorrectSingleComparesFirstValue(t *testing.T) {
	q := sampleQuestions()[0]

	assert.True(t, Correct(q, []string{"Paris"}))
	assert.False(t, Correct(q, []string{"London"}))
}

func TestCorrectEmptySelectionIsWrong(t *testing.T) {
	q := sampleQuestions()[0]

	assert.False(t, Correct(q, nil))
	assert.False(t, Correct(q, []string{}))
}

func TestCorrectNoCorrectAnswersIsWrong(t *testing.T) {
	q := model.Question{
		Text:    "Orphaned question",
		Choices: []string{"A", "B"},
		Type:    model.QuestionTypeSingle,
	}

	// A question with no answer key can never be scored correct.
	assert.False(t, Correct(q, []string{"A"}))
}

func TestBuildReview(t *testing.T) {
	questions := sampleQuestions()
	answers := model.AnswerMap{
		0: {"Paris"},
		1: {"Red"},
	}

	review := BuildReview(questions, answers)
	require.Len(t, review, 3)

	assert.True(t, review[0].Correct)
	assert.False(t, review[0].Unanswered)
	assert.Equal(t, []string{"Paris"}, review[0].Selected)

	assert.False(t, review[1].Correct)
	assert.False(t, review[1].Unanswered)
	assert.Equal(t, []string{"Red", "Blue"}, review[1].CorrectAnswers)

	assert.False(t, review[2].Correct)
	assert.True(t, review[2].Unanswered)
	assert.Empty(t, review[2].Selected)
}
