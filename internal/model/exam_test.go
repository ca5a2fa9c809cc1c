package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutesUnmarshalNumber(t *testing.T) {
	var m Minutes
	require.NoError(t, json.Unmarshal([]byte(`45`), &m))
	assert.Equal(t, Minutes(45), m)
}

func TestMinutesUnmarshalNumericString(t *testing.T) {
	var m Minutes
	require.NoError(t, json.Unmarshal([]byte(`"45"`), &m))
	assert.Equal(t, Minutes(45), m)
}

func TestMinutesUnmarshalStringWithUnits(t *testing.T) {
	var m Minutes
	require.NoError(t, json.Unmarshal([]byte(`"45 minutes"`), &m))
	assert.Equal(t, Minutes(45), m)
}

func TestMinutesUnmarshalGarbage(t *testing.T) {
	var m Minutes
	require.NoError(t, json.Unmarshal([]byte(`"soon"`), &m))
	assert.Equal(t, Minutes(0), m)

	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, Minutes(0), m)
}

func TestMinutesOrDefault(t *testing.T) {
	assert.Equal(t, 45, Minutes(45).OrDefault())
	assert.Equal(t, DefaultDurationMinutes, Minutes(0).OrDefault())
	assert.Equal(t, DefaultDurationMinutes, Minutes(-5).OrDefault())
}

func TestQuestionPayloadNormalizeLegacyScalar(t *testing.T) {
	p := QuestionPayload{
		Text:          "Pick one",
		Choices:       []string{"A", "B"},
		CorrectAnswer: "B",
	}

	q := p.Normalize()

	assert.Equal(t, QuestionTypeSingle, q.Type)
	assert.Equal(t, []string{"B"}, q.CorrectAnswers)
}

func TestQuestionPayloadNormalizeListWins(t *testing.T) {
	p := QuestionPayload{
		Text:           "Pick many",
		Choices:        []string{"A", "B", "C"},
		Type:           "multiple",
		CorrectAnswers: []string{"A", "C"},
		CorrectAnswer:  "B", // stale legacy field must be ignored
	}

	q := p.Normalize()

	assert.Equal(t, QuestionTypeMultiple, q.Type)
	assert.Equal(t, []string{"A", "C"}, q.CorrectAnswers)
}

func TestQuestionPayloadNormalizeMissingType(t *testing.T) {
	q := QuestionPayload{Text: "x", Choices: []string{"A", "B"}}.Normalize()

	assert.Equal(t, QuestionTypeSingle, q.Type)
	assert.NotNil(t, q.CorrectAnswers)
}

func TestRenameChoicePropagatesToCorrectAnswers(t *testing.T) {
	q := Question{
		Text:           "Pick",
		Choices:        []string{"Old", "Other"},
		Type:           QuestionTypeSingle,
		CorrectAnswers: []string{"Old"},
	}

	q.RenameChoice(0, "New")

	assert.Equal(t, []string{"New", "Other"}, q.Choices)
	assert.Equal(t, []string{"New"}, q.CorrectAnswers)
}

func TestRenameChoiceToEmptyDropsCorrectAnswer(t *testing.T) {
	q := Question{
		Text:           "Pick",
		Choices:        []string{"Old", "Other"},
		Type:           QuestionTypeMultiple,
		CorrectAnswers: []string{"Old", "Other"},
	}

	q.RenameChoice(0, "")

	assert.Equal(t, []string{"Other"}, q.CorrectAnswers)
}

func TestRenameChoiceIncorrectChoiceLeavesAnswers(t *testing.T) {
	q := Question{
		Text:           "Pick",
		Choices:        []string{"A", "B"},
		Type:           QuestionTypeSingle,
		CorrectAnswers: []string{"B"},
	}

	q.RenameChoice(0, "Renamed")

	assert.Equal(t, []string{"B"}, q.CorrectAnswers)
}

func TestRenameChoiceOutOfRange(t *testing.T) {
	q := Question{Choices: []string{"A"}, CorrectAnswers: []string{"A"}}

	q.RenameChoice(5, "X")

	assert.Equal(t, []string{"A"}, q.Choices)
}

func validExam() *Exam {
	return &Exam{
		Title:           "Valid",
		DurationMinutes: 30,
		Questions: []Question{
			{
				Text:           "Q1",
				Choices:        []string{"A", "B"},
				Type:           QuestionTypeSingle,
				CorrectAnswers: []string{"A"},
			},
		},
	}
}

func TestValidatePasses(t *testing.T) {
	assert.NoError(t, validExam().Validate())
}

func TestValidateMissingTitle(t *testing.T) {
	exam := validExam()
	exam.Title = "   "

	err := exam.Validate()

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ValidationMissingTitle, ve.Kind)
	assert.Equal(t, -1, ve.QuestionIndex)
}

func TestValidateInsufficientChoices(t *testing.T) {
	exam := validExam()
	exam.Questions[0].Choices = []string{"only one"}

	err := exam.Validate()

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ValidationInsufficientChoices, ve.Kind)
	assert.Equal(t, 0, ve.QuestionIndex)
}

func TestValidateBlankChoice(t *testing.T) {
	exam := validExam()
	exam.Questions[0].Choices = []string{"A", "  "}

	err := exam.Validate()

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ValidationInsufficientChoices, ve.Kind)
}

func TestValidateNoCorrectAnswer(t *testing.T) {
	exam := validExam()
	exam.Questions[0].CorrectAnswers = nil

	err := exam.Validate()

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ValidationNoCorrectAnswer, ve.Kind)
	assert.Equal(t, 0, ve.QuestionIndex)
}

func TestValidateMultipleCorrectOnSingleTypeAllowed(t *testing.T) {
	exam := validExam()
	exam.Questions[0].CorrectAnswers = []string{"A", "B"}

	assert.NoError(t, exam.Validate())
}
