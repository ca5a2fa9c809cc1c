package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerMapUnmarshalMixedShapes(t *testing.T) {
	raw := `{"0": "Paris", "1": ["Red", "Blue"], "2": "42"}`

	var m AnswerMap
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, []string{"Paris"}, m[0])
	assert.Equal(t, []string{"Red", "Blue"}, m[1])
	assert.Equal(t, []string{"42"}, m[2])
}

func TestAnswerMapUnmarshalSkipsMalformedEntries(t *testing.T) {
	raw := `{"0": "Paris", "not-a-number": "x", "-3": "y", "1": 42}`

	var m AnswerMap
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, AnswerMap{0: {"Paris"}}, m)
}

func TestAnswerMapMarshalUsesArrays(t *testing.T) {
	m := AnswerMap{0: {"Paris"}}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	assert.JSONEq(t, `{"0": ["Paris"]}`, string(data))
}

func TestAnswerMapCloneIsDeep(t *testing.T) {
	m := AnswerMap{0: {"Paris"}}
	cp := m.Clone()

	cp[0][0] = "London"
	cp[1] = []string{"Red"}

	assert.Equal(t, []string{"Paris"}, m[0])
	assert.NotContains(t, m, 1)
}

func TestAnswerMapAnswered(t *testing.T) {
	m := AnswerMap{0: {"Paris"}, 1: {}}

	assert.True(t, m.Answered(0))
	assert.False(t, m.Answered(1), "an empty selection is unanswered")
	assert.False(t, m.Answered(2))
}

func TestAnswerMapUnansweredCount(t *testing.T) {
	m := AnswerMap{0: {"Paris"}, 2: {"42"}}

	assert.Equal(t, 1, m.UnansweredCount(3))
	assert.Equal(t, 3, m.UnansweredCount(5))
	assert.Equal(t, 0, AnswerMap{}.UnansweredCount(0))
}
