package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examspark/examspark-backend/internal/model"
)

func TestVisibilityHiddenCountsAndWarns(t *testing.T) {
	s := New(sampleExam()).Start()

	s, warning := s.ApplySignal(model.ProctorVisibilityHidden)

	assert.Equal(t, 1, s.FocusLossCount)
	assert.True(t, s.WarningShown)
	require.NotNil(t, warning)
	assert.Equal(t, WarnFocusLoss, warning.Kind)
}

func TestFocusLossCounterIsMonotonic(t *testing.T) {
	s := New(sampleExam()).Start()

	for i := 0; i < 5; i++ {
		s, _ = s.ApplySignal(model.ProctorVisibilityHidden)
	}

	assert.Equal(t, 5, s.FocusLossCount)
}

func TestBlurSuppressedWhileWarningShown(t *testing.T) {
	s := New(sampleExam()).Start()
	s, _ = s.ApplySignal(model.ProctorVisibilityHidden)
	require.True(t, s.WarningShown)

	s, warning := s.ApplySignal(model.ProctorWindowBlur)

	assert.Nil(t, warning, "blur must not stack a second warning")
	assert.Equal(t, 1, s.FocusLossCount)
}

func TestBlurCountsAfterWarningDismissed(t *testing.T) {
	s := New(sampleExam()).Start()
	s, _ = s.ApplySignal(model.ProctorVisibilityHidden)
	s = s.DismissWarning()

	s, warning := s.ApplySignal(model.ProctorWindowBlur)

	assert.Equal(t, 2, s.FocusLossCount)
	require.NotNil(t, warning)
	assert.Equal(t, WarnFocusLoss, warning.Kind)
}

func TestFullscreenSignals(t *testing.T) {
	s := New(sampleExam()).Start()

	s = s.EnterFullscreen()
	assert.True(t, s.Fullscreen)

	s, warning := s.ApplySignal(model.ProctorFullscreenExit)
	assert.False(t, s.Fullscreen)
	require.NotNil(t, warning)
	assert.Equal(t, InfoFullscreen, warning.Kind)
	assert.Equal(t, 0, s.FocusLossCount, "fullscreen exits are informational, not incidents")
}

func TestFullscreenDeniedIsInformational(t *testing.T) {
	s := New(sampleExam()).Start()

	s, warning := s.ApplySignal(model.ProctorFullscreenDenied)

	assert.False(t, s.Fullscreen)
	require.NotNil(t, warning)
	assert.Equal(t, 0, s.FocusLossCount)
}

func TestUnloadAttemptWarnsWithoutCounting(t *testing.T) {
	s := New(sampleExam()).Start()

	s, warning := s.ApplySignal(model.ProctorUnloadAttempt)

	require.NotNil(t, warning)
	assert.Equal(t, InfoUnload, warning.Kind)
	assert.Equal(t, 0, s.FocusLossCount)
}

func TestSignalsIgnoredOutsideActive(t *testing.T) {
	s := New(sampleExam())

	s, warning := s.ApplySignal(model.ProctorVisibilityHidden)
	assert.Nil(t, warning)
	assert.Equal(t, 0, s.FocusLossCount)

	s = s.Start()
	s = s.SetAnswer(0, "Paris")
	s = s.SetAnswer(1, "Red")
	s = s.SetAnswer(2, "42")
	s = s.RequestSubmit()
	require.Equal(t, PhaseSubmitted, s.Phase)

	s, warning = s.ApplySignal(model.ProctorWindowBlur)
	assert.Nil(t, warning)
	assert.Equal(t, 0, s.FocusLossCount, "signals after submit must not count")
}

func TestEnterFullscreenOutsideActiveIsNoOp(t *testing.T) {
	s := New(sampleExam()).EnterFullscreen()

	assert.False(t, s.Fullscreen)
}
