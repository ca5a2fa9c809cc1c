package model

import (
	"fmt"
	"strings"
)

// ValidationKind identifies which authoring invariant was violated.
type ValidationKind string

const (
	ValidationMissingTitle        ValidationKind = "missing-title"
	ValidationInsufficientChoices ValidationKind = "insufficient-choices"
	ValidationNoCorrectAnswer     ValidationKind = "no-correct-answer"
)

// ValidationError reports an invalid exam record. QuestionIndex is -1
// for exam-level violations.
type ValidationError struct {
	Kind          ValidationKind
	QuestionIndex int
}

func (e *ValidationError) Error() string {
	if e.QuestionIndex < 0 {
		return fmt.Sprintf("invalid exam: %s", e.Kind)
	}
	return fmt.Sprintf("invalid exam: %s (question %d)", e.Kind, e.QuestionIndex)
}

// Validate enforces the invariants the grading engine relies on: a
// non-empty title, at least two non-empty choices per question, and at
// least one correct answer wherever choices exist. Single-type
// cardinality is deliberately not enforced here; the authoring UI's
// radio semantics keep it at one, and grading reads only the first
// element either way.
func (e *Exam) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Kind: ValidationMissingTitle, QuestionIndex: -1}
	}
	for i, q := range e.Questions {
		if len(q.Choices) < 2 {
			return &ValidationError{Kind: ValidationInsufficientChoices, QuestionIndex: i}
		}
		for _, c := range q.Choices {
			if strings.TrimSpace(c) == "" {
				return &ValidationError{Kind: ValidationInsufficientChoices, QuestionIndex: i}
			}
		}
		if len(q.Choices) > 0 && len(q.CorrectAnswers) == 0 {
			return &ValidationError{Kind: ValidationNoCorrectAnswer, QuestionIndex: i}
		}
	}
	return nil
}
