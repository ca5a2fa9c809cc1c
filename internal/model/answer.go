package model

import (
	"encoding/json"
	"strconv"
)

// AnswerMap maps a question index to the choice values selected for it.
// Single-type questions carry at most one value; multiple-type questions
// carry a set. An absent index means the question was left unanswered.
//
// The wire form is an object keyed by the index as a string, with either
// a scalar choice value or an array of choice values, both shapes the
// browser client has historically produced.
type AnswerMap map[int][]string

// UnmarshalJSON decodes both the scalar and the array value shape.
// Non-numeric keys and values of any other shape are skipped rather than
// rejected, so a partially malformed submission still grades.
func (m *AnswerMap) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(AnswerMap, len(raw))
	for key, val := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			continue
		}
		var single string
		if err := json.Unmarshal(val, &single); err == nil {
			out[idx] = []string{single}
			continue
		}
		var many []string
		if err := json.Unmarshal(val, &many); err == nil {
			out[idx] = many
		}
	}
	*m = out
	return nil
}

// MarshalJSON encodes the map with string keys, arrays throughout.
func (m AnswerMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string][]string, len(m))
	for idx, vals := range m {
		raw[strconv.Itoa(idx)] = vals
	}
	return json.Marshal(raw)
}

// Clone returns a deep copy. The session state machine hands out copies
// so callers can never mutate live attempt state from outside.
func (m AnswerMap) Clone() AnswerMap {
	if m == nil {
		return nil
	}
	out := make(AnswerMap, len(m))
	for idx, vals := range m {
		cp := make([]string, len(vals))
		copy(cp, vals)
		out[idx] = cp
	}
	return out
}

// Answered reports whether the question at idx has a non-empty selection.
func (m AnswerMap) Answered(idx int) bool {
	return len(m[idx]) > 0
}

// UnansweredCount counts questions with no recorded selection out of total.
func (m AnswerMap) UnansweredCount(total int) int {
	n := 0
	for i := 0; i < total; i++ {
		if !m.Answered(i) {
			n++
		}
	}
	return n
}
