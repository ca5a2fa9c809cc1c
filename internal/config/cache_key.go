package config

import "fmt"

// CacheKeyStruct centralizes every Redis key format used by the app.
type CacheKeyStruct struct{}

// ExamPayloadKey returns the cache key for an exam's student payload
// (questions without correct answers).
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// ExamAnswerKey returns the cache key for an exam's answer key hash.
func (r *CacheKeyStruct) ExamAnswerKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

// ExamDurationKey returns the cache key for an exam's duration.
func (r *CacheKeyStruct) ExamDurationKey(examID string) string {
	return fmt.Sprintf("exam:%s:duration", examID)
}

// AttemptAnswersKey returns the autosave hash key for one user's
// in-flight answers on an exam.
func (r *CacheKeyStruct) AttemptAnswersKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:answers", userID, examID)
}

// AttemptStartKey returns the key holding a user's attempt start time.
func (r *CacheKeyStruct) AttemptStartKey(examID, userID string) string {
	return fmt.Sprintf("user:%s:exam:%s:attempt_start", userID, examID)
}

// ExamMonitorChannel returns the PubSub channel for an exam's live
// monitor feed.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = &CacheKeyStruct{}
