package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examspark/examspark-backend/internal/model"
)

func sampleExam() *model.Exam {
	return &model.Exam{
		Title:           "Sample Exam",
		DurationMinutes: 1,
		Questions: []model.Question{
			{
				Text:           "What is the capital of France?",
				Choices:        []string{"London", "Paris", "Berlin"},
				Type:           model.QuestionTypeSingle,
				CorrectAnswers: []string{"Paris"},
			},
			{
				Text:           "Which are primary colors?",
				Choices:        []string{"Red", "Green", "Blue"},
				Type:           model.QuestionTypeMultiple,
				CorrectAnswers: []string{"Red", "Blue"},
			},
			{
				Text:           "What is the answer to everything?",
				Choices:        []string{"41", "42"},
				Type:           model.QuestionTypeSingle,
				CorrectAnswers: []string{"42"},
			},
		},
	}
}

func TestNewState(t *testing.T) {
	s := New(sampleExam())

	assert.Equal(t, PhaseNotStarted, s.Phase)
	assert.Equal(t, 60, s.TimeRemaining)
	assert.Equal(t, 3, s.QuestionCount())
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Empty(t, s.Answers)
}

func TestNewStateDefaultsDuration(t *testing.T) {
	exam := sampleExam()
	exam.DurationMinutes = 0

	s := New(exam)

	assert.Equal(t, model.DefaultDurationMinutes*60, s.TimeRemaining)
}

func TestStartActivates(t *testing.T) {
	s := New(sampleExam()).Start()

	assert.Equal(t, PhaseActive, s.Phase)
	assert.Equal(t, 60, s.TimeRemaining)
	assert.Equal(t, 0, s.FocusLossCount)
}

func TestStartOnlyFromNotStarted(t *testing.T) {
	s := New(sampleExam()).Start()
	s.TimeRemaining = 30

	again := s.Start()
	assert.Equal(t, 30, again.TimeRemaining, "a second start must not reset the clock")
}

func TestTickCountsDown(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.Tick()
	assert.Equal(t, 59, s.TimeRemaining)
	assert.Equal(t, PhaseActive, s.Phase)
}

func TestTickAutoSubmitsAtZero(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")

	for i := 0; i < 60; i++ {
		s = s.Tick()
	}

	require.Equal(t, PhaseSubmitted, s.Phase)
	assert.True(t, s.AutoSubmitted)
	require.NotNil(t, s.Result)
	assert.Equal(t, 1, s.Result.CorrectCount)
	assert.Equal(t, 3, s.Result.Total)
}

func TestTickAfterSubmitIsNoOp(t *testing.T) {
	s := New(sampleExam()).Start()
	for i := 0; i < 60; i++ {
		s = s.Tick()
	}
	require.Equal(t, PhaseSubmitted, s.Phase)

	again := s.Tick()
	assert.Equal(t, s, again, "a straggling tick must not mutate a submitted attempt")
}

func TestSetAnswerSingleOverwrites(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.SetAnswer(0, "London")
	s = s.SetAnswer(0, "Paris")

	assert.Equal(t, []string{"Paris"}, s.Answers[0])
}

func TestSetAnswerBeforeStartIsNoOp(t *testing.T) {
	s := New(sampleExam()).SetAnswer(0, "Paris")

	assert.Empty(t, s.Answers)
}

func TestSetAnswerOutOfRangeIsNoOp(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.SetAnswer(-1, "Paris")
	s = s.SetAnswer(3, "Paris")

	assert.Empty(t, s.Answers)
}

func TestSetAnswerDoesNotMutateReceiver(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")

	_ = s.SetAnswer(0, "London")

	assert.Equal(t, []string{"Paris"}, s.Answers[0])
}

func TestToggleChoiceAddsAndRemoves(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.ToggleChoice(1, "Red")
	s = s.ToggleChoice(1, "Blue")
	assert.ElementsMatch(t, []string{"Red", "Blue"}, s.Answers[1])

	s = s.ToggleChoice(1, "Red")
	assert.Equal(t, []string{"Blue"}, s.Answers[1])
}

func TestToggleChoiceOnSingleOverwrites(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.ToggleChoice(0, "London")
	s = s.ToggleChoice(0, "Paris")

	assert.Equal(t, []string{"Paris"}, s.Answers[0])
}

func TestNextRaisesSkipWarningWhenUnanswered(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.Next()

	assert.Equal(t, 1, s.CurrentIndex)
	assert.True(t, s.SkipWarning)
}

func TestNextNoWarningWhenAnswered(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")

	s = s.Next()

	assert.Equal(t, 1, s.CurrentIndex)
	assert.False(t, s.SkipWarning)
}

func TestNextClampsAtLastQuestion(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.Next()
	s = s.Next()
	require.Equal(t, 2, s.CurrentIndex)
	s = s.ClearSkipWarning()

	again := s.Next()

	assert.Equal(t, 2, again.CurrentIndex)
	assert.False(t, again.SkipWarning, "standing still must not warn")
}

func TestPreviousClampsAtZeroAndClearsWarning(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.Next()
	require.True(t, s.SkipWarning)

	s = s.Previous()
	assert.Equal(t, 0, s.CurrentIndex)
	assert.False(t, s.SkipWarning)

	s = s.Previous()
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestAnsweringCurrentQuestionClearsSkipWarning(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.Next()
	require.True(t, s.SkipWarning)

	s = s.ToggleChoice(1, "Red")

	assert.False(t, s.SkipWarning)
}

func TestAnsweringSkippedQuestionClearsSkipWarning(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.Next()
	require.True(t, s.SkipWarning)
	require.Equal(t, 1, s.CurrentIndex)

	s = s.SetAnswer(0, "Paris")

	assert.False(t, s.SkipWarning, "answering the skipped question must clear the warning")
}

func TestTogglingSkippedQuestionClearsSkipWarning(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.Next()
	s = s.Next()
	require.True(t, s.SkipWarning)

	s = s.ToggleChoice(1, "Blue")

	assert.False(t, s.SkipWarning)
}

func TestAnsweringUnrelatedQuestionKeepsSkipWarning(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.Next()
	require.True(t, s.SkipWarning)

	s = s.SetAnswer(2, "42")

	assert.True(t, s.SkipWarning)
}

func TestRequestSubmitWithAllAnswered(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")
	s = s.ToggleChoice(1, "Red")
	s = s.ToggleChoice(1, "Blue")
	s = s.SetAnswer(2, "42")

	s = s.RequestSubmit()

	require.Equal(t, PhaseSubmitted, s.Phase)
	assert.False(t, s.AutoSubmitted)
	require.NotNil(t, s.Result)
	assert.Equal(t, 3, s.Result.CorrectCount)
}

func TestRequestSubmitWithUnansweredAwaitsConfirm(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")

	s = s.RequestSubmit()

	assert.Equal(t, PhaseActive, s.Phase)
	assert.True(t, s.AwaitingConfirm)
	assert.Equal(t, 2, s.PendingUnanswered)
	assert.Nil(t, s.Result)
}

func TestConfirmSubmitFinalizes(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")
	s = s.RequestSubmit()
	require.True(t, s.AwaitingConfirm)

	s = s.ConfirmSubmit()

	require.Equal(t, PhaseSubmitted, s.Phase)
	assert.False(t, s.AutoSubmitted)
	assert.Equal(t, 1, s.Result.CorrectCount)
}

func TestConfirmWithoutRequestIsNoOp(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.ConfirmSubmit()

	assert.Equal(t, PhaseActive, s.Phase)
}

func TestCancelSubmitStaysActive(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")
	s = s.RequestSubmit()
	require.True(t, s.AwaitingConfirm)

	s = s.CancelSubmit()

	assert.Equal(t, PhaseActive, s.Phase)
	assert.False(t, s.AwaitingConfirm)
	assert.Equal(t, 0, s.PendingUnanswered)
	assert.Equal(t, []string{"Paris"}, s.Answers[0], "declining must not lose answers")
}

func TestSubmitAfterSubmitIsNoOp(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")
	s = s.RequestSubmit()
	s = s.ConfirmSubmit()
	require.Equal(t, PhaseSubmitted, s.Phase)
	first := s.Result

	s = s.RequestSubmit()
	assert.Same(t, first, s.Result, "a second submit must not re-grade")
}

func TestRetakeResetsEverything(t *testing.T) {
	s := New(sampleExam()).Start()
	s = s.SetAnswer(0, "Paris")
	s, _ = s.ApplySignal(model.ProctorVisibilityHidden)
	for i := 0; i < 60; i++ {
		s = s.Tick()
	}
	require.Equal(t, PhaseSubmitted, s.Phase)

	s = s.Retake()

	assert.Equal(t, PhaseNotStarted, s.Phase)
	assert.Equal(t, 60, s.TimeRemaining)
	assert.Equal(t, 0, s.FocusLossCount)
	assert.Empty(t, s.Answers)
	assert.Nil(t, s.Result)
	assert.Equal(t, 3, s.QuestionCount())
}

func TestTimeTakenSeconds(t *testing.T) {
	s := New(sampleExam()).Start()
	for i := 0; i < 10; i++ {
		s = s.Tick()
	}

	assert.Equal(t, 10, s.TimeTakenSeconds())
}
