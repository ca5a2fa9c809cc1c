package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/examspark/examspark-backend/internal/config"
	"github.com/examspark/examspark-backend/internal/grading"
	"github.com/examspark/examspark-backend/internal/model"
	"github.com/examspark/examspark-backend/internal/repository"
	"github.com/examspark/examspark-backend/internal/response"
)

// AttemptService handles grading, attempt persistence, the Redis
// autosave lane and the live monitor feed. Finished attempts and proctor
// incidents are queued to Redis and drained by background workers; the
// hot path never writes MongoDB directly.
type AttemptService struct {
	examRepo    *repository.ExamRepository
	attemptRepo *repository.AttemptRepository
	proctorRepo *repository.ProctorEventRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	examRepo *repository.ExamRepository,
	attemptRepo *repository.AttemptRepository,
	proctorRepo *repository.ProctorEventRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		proctorRepo: proctorRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// RecordStart stamps the attempt start time, first write wins so a
// reconnect does not reset the clock.
func (s *AttemptService) RecordStart(ctx context.Context, examID, userID string) error {
	key := config.CacheKey.AttemptStartKey(examID, userID)
	return s.rdb.SetNX(ctx, key, time.Now().Unix(), 0).Err()
}

// SaveProgress autosaves one question's selection into the attempt hash.
func (s *AttemptService) SaveProgress(ctx context.Context, examID, userID string, idx int, values []string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	key := config.CacheKey.AttemptAnswersKey(examID, userID)
	return s.rdb.HSet(ctx, key, strconv.Itoa(idx), data).Err()
}

// LoadProgress restores the autosaved answers for a reconnecting client.
// Malformed entries are skipped.
func (s *AttemptService) LoadProgress(ctx context.Context, examID, userID string) (model.AnswerMap, error) {
	key := config.CacheKey.AttemptAnswersKey(examID, userID)
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	answers := model.AnswerMap{}
	for idxStr, valuesJSON := range raw {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			continue
		}
		var values []string
		if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
			continue
		}
		answers[idx] = values
	}
	return answers, nil
}

// ClearProgress drops the autosave hash and start stamp once the
// attempt is finished or retaken.
func (s *AttemptService) ClearProgress(ctx context.Context, examID, userID string) {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.AttemptAnswersKey(examID, userID))
	pipe.Del(ctx, config.CacheKey.AttemptStartKey(examID, userID))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID).Str("user_id", userID).Msg("Failed to clear autosave state")
	}
}

// Grade runs the authoritative grading pass against the stored exam and
// returns the finished attempt record alongside the questions used, so
// callers can build the review without re-reading the exam.
func (s *AttemptService) Grade(
	ctx context.Context,
	examID primitive.ObjectID,
	userID string,
	answers model.AnswerMap,
	durationSeconds int,
	focusLossCount int,
	autoSubmitted bool,
) (*model.Attempt, []model.Question, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, nil, err
	}

	result := grading.Grade(exam.Questions, answers)

	attempt := &model.Attempt{
		ID:              primitive.NewObjectID(),
		ExamID:          examID,
		UserID:          userID,
		CorrectCount:    result.CorrectCount,
		Total:           result.Total,
		DurationSeconds: durationSeconds,
		FocusLossCount:  focusLossCount,
		AutoSubmitted:   autoSubmitted,
		SubmittedAt:     time.Now().UTC(),
	}

	s.log.Info().
		Str("exam_id", examID.Hex()).
		Str("user_id", userID).
		Int("correct", result.CorrectCount).
		Int("total", result.Total).
		Bool("auto", autoSubmitted).
		Msg("Attempt graded")

	return attempt, exam.Questions, nil
}

// QueueResult pushes a finished attempt onto the persistence queue.
func (s *AttemptService) QueueResult(ctx context.Context, attempt *model.Attempt) {
	data, err := json.Marshal(attempt)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal attempt for queue")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, data).Err(); err != nil {
		s.log.Error().Err(err).Str("exam_id", attempt.ExamID.Hex()).Msg("Failed to queue attempt")
	}
}

// QueueProctorEvent pushes one proctoring incident onto its queue.
func (s *AttemptService) QueueProctorEvent(ctx context.Context, ev *model.ProctorEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal proctor event for queue")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistProctorEventsQueue, data).Err(); err != nil {
		s.log.Error().Err(err).Str("exam_id", ev.ExamID.Hex()).Msg("Failed to queue proctor event")
	}
}

// PublishMonitorEvent fans an event out to the exam's live monitor
// channel. Best effort; monitoring never blocks the attempt.
func (s *AttemptService) PublishMonitorEvent(ctx context.Context, examID string, event map[string]interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := config.CacheKey.ExamMonitorChannel(examID)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		s.log.Debug().Err(err).Str("exam_id", examID).Msg("Monitor publish failed")
	}
}

// ProctorActivity summarizes the persisted proctoring incidents for an
// exam: the all-time count plus the most recent events, for the monitor
// snapshot.
func (s *AttemptService) ProctorActivity(ctx context.Context, examID primitive.ObjectID, recent int) (int64, []model.ProctorEvent, error) {
	total, err := s.proctorRepo.CountByExam(ctx, examID)
	if err != nil {
		return 0, nil, err
	}

	events, err := s.proctorRepo.ListByExam(ctx, examID, recent, 0)
	if err != nil {
		return total, nil, err
	}
	if events == nil {
		events = []model.ProctorEvent{}
	}
	return total, events, nil
}

// ListByExam returns persisted attempts for an exam, newest first.
func (s *AttemptService) ListByExam(ctx context.Context, examID primitive.ObjectID, page, perPage int) ([]model.Attempt, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	attempts, total, err := s.attemptRepo.ListByExam(ctx, examID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if attempts == nil {
		attempts = []model.Attempt{}
	}

	totalPages := (int(total) + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}

	return attempts, pagination, nil
}
