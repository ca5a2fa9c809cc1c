// Package grading scores a set of submitted answers against an exam's
// questions. Pure functions, no I/O: the session engine, the grading
// endpoint and the tests all share this one implementation.
package grading

import "github.com/examspark/examspark-backend/internal/model"

// Result is an aggregate score.
type Result struct {
	CorrectCount int `json:"correctCount"`
	Total        int `json:"total"`
}

// Grade scores answers against questions. An absent or empty selection
// counts as incorrect. Single-type questions compare the submitted value
// against the first correct answer by exact string equality; multiple-type
// questions require set equality with no partial credit. A question with
// no correct answers (invalid data) is always incorrect, never an error.
func Grade(questions []model.Question, answers model.AnswerMap) Result {
	res := Result{Total: len(questions)}
	for i, q := range questions {
		if Correct(q, answers[i]) {
			res.CorrectCount++
		}
	}
	return res
}

// Correct reports whether the selection answers the question correctly.
func Correct(q model.Question, selected []string) bool {
	if len(selected) == 0 || len(q.CorrectAnswers) == 0 {
		return false
	}
	if q.Type == model.QuestionTypeMultiple {
		return setEqual(selected, q.CorrectAnswers)
	}
	return selected[0] == q.CorrectAnswers[0]
}

// setEqual compares two string slices as sets, ignoring order and
// duplicate entries.
func setEqual(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	want := make(map[string]struct{}, len(b))
	for _, v := range b {
		want[v] = struct{}{}
	}
	if len(seen) != len(want) {
		return false
	}
	for v := range want {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}
