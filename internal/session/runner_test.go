package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examspark/examspark-backend/internal/model"
)

func newTestRunner(exam *model.Exam) *Runner {
	r := NewRunner(exam)
	r.TickInterval = 5 * time.Millisecond
	r.SkipWarningTTL = 20 * time.Millisecond
	r.WarningTTL = 20 * time.Millisecond
	return r
}

func TestRunnerCountsDown(t *testing.T) {
	r := newTestRunner(sampleExam())
	defer r.Stop()

	state := r.Start()
	require.Equal(t, PhaseActive, state.Phase)

	assert.Eventually(t, func() bool {
		return r.Snapshot().TimeRemaining < 60
	}, time.Second, time.Millisecond)
}

func TestRunnerAutoSubmitsExactlyOnce(t *testing.T) {
	exam := sampleExam()
	r := newTestRunner(exam)
	defer r.Stop()

	var autoSubmits int32
	r.OnAutoSubmit = func(st State) {
		atomic.AddInt32(&autoSubmits, 1)
	}

	r.Start()
	r.SetAnswer(0, "Paris")

	require.Eventually(t, func() bool {
		return r.Snapshot().Phase == PhaseSubmitted
	}, 5*time.Second, 5*time.Millisecond)

	// Give any stray ticks a chance to misfire before asserting.
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&autoSubmits))

	final := r.Snapshot()
	assert.True(t, final.AutoSubmitted)
	require.NotNil(t, final.Result)
	assert.Equal(t, 1, final.Result.CorrectCount)
}

func TestRunnerManualSubmitStopsClock(t *testing.T) {
	r := newTestRunner(sampleExam())
	defer r.Stop()

	var autoSubmits int32
	r.OnAutoSubmit = func(State) { atomic.AddInt32(&autoSubmits, 1) }

	r.Start()
	r.SetAnswer(0, "Paris")
	r.SetAnswer(1, "Red")
	r.SetAnswer(2, "42")

	state := r.RequestSubmit()
	require.Equal(t, PhaseSubmitted, state.Phase)
	remaining := state.TimeRemaining

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, remaining, r.Snapshot().TimeRemaining, "clock must stop on submit")
	assert.Equal(t, int32(0), atomic.LoadInt32(&autoSubmits))
}

func TestRunnerSkipWarningSelfClears(t *testing.T) {
	r := newTestRunner(sampleExam())
	defer r.Stop()

	r.Start()
	state := r.Next()
	require.True(t, state.SkipWarning)

	assert.Eventually(t, func() bool {
		return !r.Snapshot().SkipWarning
	}, time.Second, time.Millisecond)
}

func TestRunnerWarningExpiryAllowsNextBlur(t *testing.T) {
	r := newTestRunner(sampleExam())
	defer r.Stop()

	r.Start()
	_, warning := r.Signal(model.ProctorVisibilityHidden)
	require.NotNil(t, warning)

	// Within the TTL a blur is suppressed.
	_, warning = r.Signal(model.ProctorWindowBlur)
	assert.Nil(t, warning)

	// After expiry the next blur warns and counts again.
	require.Eventually(t, func() bool {
		_, w := r.Signal(model.ProctorWindowBlur)
		return w != nil
	}, time.Second, 25*time.Millisecond)

	assert.GreaterOrEqual(t, r.Snapshot().FocusLossCount, 2)
}

func TestRunnerRetakeStopsClock(t *testing.T) {
	r := newTestRunner(sampleExam())
	defer r.Stop()

	r.Start()
	require.Eventually(t, func() bool {
		return r.Snapshot().TimeRemaining < 60
	}, time.Second, time.Millisecond)

	state := r.Retake()
	require.Equal(t, PhaseNotStarted, state.Phase)
	assert.Equal(t, 60, state.TimeRemaining)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 60, r.Snapshot().TimeRemaining, "retake must park the clock until the next start")
}

func TestRunnerRestartAfterRetake(t *testing.T) {
	r := newTestRunner(sampleExam())
	defer r.Stop()

	r.Start()
	r.SetAnswer(0, "Paris")
	r.Retake()

	state := r.Start()
	assert.Equal(t, PhaseActive, state.Phase)
	assert.Empty(t, state.Answers)

	assert.Eventually(t, func() bool {
		return r.Snapshot().TimeRemaining < 60
	}, time.Second, time.Millisecond)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	r := newTestRunner(sampleExam())

	r.Start()
	r.Stop()
	r.Stop()

	state := r.Start()
	assert.Equal(t, PhaseActive, state.Phase, "state transitions still apply after stop")

	remaining := r.Snapshot().TimeRemaining
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, remaining, r.Snapshot().TimeRemaining, "no ticker may run after stop")
}
