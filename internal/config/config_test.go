package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.example"}, parseOrigins("https://a.example"))
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		parseOrigins(" https://a.example , https://b.example ,"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "exam:abc:payload", CacheKey.ExamPayloadKey("abc"))
	assert.Equal(t, "exam:abc:key", CacheKey.ExamAnswerKey("abc"))
	assert.Equal(t, "exam:abc:duration", CacheKey.ExamDurationKey("abc"))
	assert.Equal(t, "user:u1:exam:abc:answers", CacheKey.AttemptAnswersKey("abc", "u1"))
	assert.Equal(t, "user:u1:exam:abc:attempt_start", CacheKey.AttemptStartKey("abc", "u1"))
	assert.Equal(t, "exam:abc:monitor", CacheKey.ExamMonitorChannel("abc"))
}
