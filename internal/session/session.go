// Package session implements the exam attempt state machine: countdown
// timing, answer capture, navigation, proctoring signals and
// submission. State is an immutable value object with pure transition
// functions so the whole lifecycle is unit-testable without a transport;
// Runner binds a State to a wall-clock ticker for live attempts.
package session

import (
	"github.com/examspark/examspark-backend/internal/grading"
	"github.com/examspark/examspark-backend/internal/model"
)

// Phase is the lifecycle stage of one attempt.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseSubmitted  Phase = "submitted"
)

// State is the complete state of one exam attempt. Transitions return a
// new value; the receiver is never mutated, and the answer map is copied
// on write. Once Phase leaves Active every further event is a no-op,
// which resolves races between a late timer tick and a user submit.
type State struct {
	Phase          Phase
	CurrentIndex   int
	TimeRemaining  int // seconds
	FocusLossCount int
	Answers        model.AnswerMap

	// SkipWarning is the transient "you skipped this question" flag; the
	// Runner clears it again after a short delay. skipIndex remembers
	// which question was skipped so answering it dismisses the warning.
	SkipWarning bool
	skipIndex   int

	// AwaitingConfirm is set when a manual submit found unanswered
	// questions; PendingUnanswered carries the count for the prompt.
	AwaitingConfirm   bool
	PendingUnanswered int

	// WarningShown tracks whether a proctoring warning is currently
	// displayed, so blur events do not stack warnings.
	WarningShown bool

	// Fullscreen mirrors the client's best-effort presentation mode.
	Fullscreen bool

	AutoSubmitted bool
	Result        *grading.Result

	questions       []model.Question
	durationSeconds int
}

// New builds the NotStarted state for an attempt at the given exam.
// The exam's questions are captured here and stay fixed for the whole
// attempt, edits to the exam record never reach a running session.
func New(exam *model.Exam) State {
	minutes := exam.DurationMinutes
	if minutes <= 0 {
		minutes = model.DefaultDurationMinutes
	}
	return State{
		Phase:           PhaseNotStarted,
		TimeRemaining:   minutes * 60,
		Answers:         model.AnswerMap{},
		questions:       exam.Questions,
		durationSeconds: minutes * 60,
	}
}

// QuestionCount returns the number of questions in the attempt.
func (s State) QuestionCount() int { return len(s.questions) }

// Questions exposes the captured question list for grading and review.
func (s State) Questions() []model.Question { return s.questions }

// DurationSeconds returns the full attempt duration.
func (s State) DurationSeconds() int { return s.durationSeconds }

// TimeTakenSeconds is the elapsed attempt time, meaningful after submit.
func (s State) TimeTakenSeconds() int { return s.durationSeconds - s.TimeRemaining }

// Start begins the attempt: full countdown, zeroed incident counter.
func (s State) Start() State {
	if s.Phase != PhaseNotStarted {
		return s
	}
	s.Phase = PhaseActive
	s.TimeRemaining = s.durationSeconds
	s.FocusLossCount = 0
	return s
}

// Tick consumes one second of the countdown. At zero the attempt
// auto-submits, skipping the confirmation step. Ticks outside the
// Active phase are no-ops, so a straggling tick after submission
// cannot mutate anything.
func (s State) Tick() State {
	if s.Phase != PhaseActive || s.TimeRemaining <= 0 {
		return s
	}
	s.TimeRemaining--
	if s.TimeRemaining == 0 {
		return s.finalize(true)
	}
	return s
}

// SetAnswer records the selection for a single-type question with
// overwrite semantics. For multiple-type questions it replaces the whole
// set. Answering the current question clears a pending skip warning.
func (s State) SetAnswer(idx int, values ...string) State {
	if s.Phase != PhaseActive || idx < 0 || idx >= len(s.questions) {
		return s
	}
	answers := s.Answers.Clone()
	if s.questions[idx].Type == model.QuestionTypeSingle && len(values) > 0 {
		answers[idx] = values[len(values)-1:]
	} else {
		answers[idx] = append([]string(nil), values...)
	}
	s.Answers = answers
	if idx == s.CurrentIndex || (s.SkipWarning && idx == s.skipIndex) {
		s.SkipWarning = false
	}
	return s
}

// ToggleChoice adds or removes one value from a multiple-type question's
// selection; both directions are idempotent. On a single-type question
// it degrades to overwrite.
func (s State) ToggleChoice(idx int, value string) State {
	if s.Phase != PhaseActive || idx < 0 || idx >= len(s.questions) {
		return s
	}
	if s.questions[idx].Type == model.QuestionTypeSingle {
		return s.SetAnswer(idx, value)
	}
	answers := s.Answers.Clone()
	current := answers[idx]
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, v := range current {
		if v == value {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, value)
	}
	answers[idx] = next
	s.Answers = answers
	if len(next) > 0 && (idx == s.CurrentIndex || (s.SkipWarning && idx == s.skipIndex)) {
		s.SkipWarning = false
	}
	return s
}

// Next advances to the following question, clamped to the last index.
// Leaving an unanswered question raises the transient skip warning;
// standing on the last question is a pure no-op.
func (s State) Next() State {
	if s.Phase != PhaseActive {
		return s
	}
	last := len(s.questions) - 1
	if s.CurrentIndex >= last {
		return s
	}
	if !s.Answers.Answered(s.CurrentIndex) {
		s.SkipWarning = true
		s.skipIndex = s.CurrentIndex
	}
	s.CurrentIndex++
	return s
}

// Previous steps back one question, clamped to zero, and clears any
// pending skip warning.
func (s State) Previous() State {
	if s.Phase != PhaseActive {
		return s
	}
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
	s.SkipWarning = false
	return s
}

// ClearSkipWarning drops the transient skip warning; the Runner calls
// this when the display delay elapses.
func (s State) ClearSkipWarning() State {
	s.SkipWarning = false
	return s
}

// RequestSubmit is the user-initiated submit. With everything answered
// it finalizes immediately; otherwise it parks the attempt awaiting an
// explicit confirmation that names the unanswered count.
func (s State) RequestSubmit() State {
	if s.Phase != PhaseActive {
		return s
	}
	unanswered := s.Answers.UnansweredCount(len(s.questions))
	if unanswered == 0 {
		return s.finalize(false)
	}
	s.AwaitingConfirm = true
	s.PendingUnanswered = unanswered
	return s
}

// ConfirmSubmit completes a submit that was awaiting confirmation.
func (s State) ConfirmSubmit() State {
	if s.Phase != PhaseActive || !s.AwaitingConfirm {
		return s
	}
	return s.finalize(false)
}

// CancelSubmit declines the confirmation prompt; the attempt stays
// Active, nothing else changes.
func (s State) CancelSubmit() State {
	if s.Phase != PhaseActive {
		return s
	}
	s.AwaitingConfirm = false
	s.PendingUnanswered = 0
	return s
}

// Retake discards the attempt and produces a fresh NotStarted state for
// the same exam: full duration, empty answers, zero incidents. Submitted
// is never re-entered; this is a new attempt, not a reversal.
func (s State) Retake() State {
	return State{
		Phase:           PhaseNotStarted,
		TimeRemaining:   s.durationSeconds,
		Answers:         model.AnswerMap{},
		questions:       s.questions,
		durationSeconds: s.durationSeconds,
	}
}

// finalize is the single path into Submitted, shared by auto and manual
// submits. Grading runs here against the captured questions.
func (s State) finalize(auto bool) State {
	result := grading.Grade(s.questions, s.Answers)
	s.Phase = PhaseSubmitted
	s.AwaitingConfirm = false
	s.PendingUnanswered = 0
	s.SkipWarning = false
	s.WarningShown = false
	s.Fullscreen = false
	s.AutoSubmitted = auto
	s.Result = &result
	return s
}
