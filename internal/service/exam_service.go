package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/examspark/examspark-backend/internal/config"
	"github.com/examspark/examspark-backend/internal/model"
	"github.com/examspark/examspark-backend/internal/repository"
	"github.com/examspark/examspark-backend/internal/response"
)

// ExamService handles exam authoring, retrieval and Redis cache warming.
type ExamService struct {
	examRepo *repository.ExamRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, rdb *redis.Client, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam by its ObjectID.
func (s *ExamService) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// Search retrieves exams matching a title query, newest first, paginated.
// An empty query lists everything.
func (s *ExamService) Search(ctx context.Context, query string, page, perPage int) ([]model.Exam, *response.Pagination, error) {
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

	exams, total, err := s.examRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if exams == nil {
		exams = []model.Exam{}
	}

	totalPages := (int(total) + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}

	return exams, pagination, nil
}

// Create validates and inserts a new exam, then warms its cache.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		Title:           req.Title,
		CoverImageURL:   req.CoverImageURL,
		DurationMinutes: req.DurationMinutes.OrDefault(),
		Questions:       model.NormalizeQuestions(req.Questions),
	}

	if err := exam.Validate(); err != nil {
		return nil, err
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, err
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.Hex()).Msg("Failed to warm cache after create")
	}

	s.log.Info().Str("exam_id", exam.ID.Hex()).Int("questions", len(exam.Questions)).Msg("Exam created")
	return exam, nil
}

// Update applies a partial edit to an existing exam. Questions, when
// present, replace the stored set wholesale. The cache is rewarmed so a
// newly opened attempt sees the edit; running attempts keep their
// captured snapshot.
func (s *ExamService) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.CoverImageURL != nil {
		exam.CoverImageURL = *req.CoverImageURL
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = int(req.DurationMinutes)
	}
	if req.Questions != nil {
		exam.Questions = model.NormalizeQuestions(req.Questions)
	}

	if err := exam.Validate(); err != nil {
		return nil, err
	}

	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, err
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.Hex()).Msg("Failed to rewarm cache after update")
	}

	s.log.Info().Str("exam_id", exam.ID.Hex()).Msg("Exam updated")
	return exam, nil
}

// Delete removes an exam and drops its cache entries.
func (s *ExamService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return err
	}

	examID := id.Hex()
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ExamPayloadKey(examID))
	pipe.Del(ctx, config.CacheKey.ExamAnswerKey(examID))
	pipe.Del(ctx, config.CacheKey.ExamDurationKey(examID))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID).Msg("Failed to drop cache after delete")
	}

	s.log.Info().Str("exam_id", examID).Msg("Exam deleted")
	return nil
}

// WarmExamCache loads an exam's student payload, answer key and duration
// from MongoDB into Redis. Used by Create, Update and PrewarmAllCaches.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	examID := exam.ID.Hex()

	// Student-facing payload, without correct answers.
	studentQuestions := make([]model.QuestionForStudent, len(exam.Questions))
	for i, q := range exam.Questions {
		studentQuestions[i] = model.QuestionForStudent{
			Text:     q.Text,
			ImageURL: q.ImageURL,
			Choices:  q.Choices,
			Type:     q.Type,
		}
	}

	payload := model.ExamPayload{
		ExamID:          examID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		Questions:       studentQuestions,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Answer key hash keyed by question index, for RAM grading.
	answerKey := make(map[string]interface{}, len(exam.Questions))
	for i, q := range exam.Questions {
		correctJSON, err := json.Marshal(q.CorrectAnswers)
		if err != nil {
			return fmt.Errorf("marshal answer key: %w", err)
		}
		answerKey[strconv.Itoa(i)] = string(correctJSON)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.ExamPayloadKey(examID), payloadJSON, 0)
	pipe.Del(ctx, config.CacheKey.ExamAnswerKey(examID))
	if len(answerKey) > 0 {
		pipe.HSet(ctx, config.CacheKey.ExamAnswerKey(examID), answerKey)
	}
	pipe.Set(ctx, config.CacheKey.ExamDurationKey(examID), exam.DurationMinutes, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", examID).
		Int("questions", len(exam.Questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads every exam into Redis on application startup so
// attempt opens never lazy-load under load.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	if len(exams) == 0 {
		s.log.Info().Msg("No exams to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(exams)).Msg("Prewarming exam caches...")

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("exam_id", exams[i].ID.Hex()).
				Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(exams)).
		Msg("Prewarming complete")
	return nil
}

// GetExamPayload retrieves the cached student payload from Redis,
// falling back to MongoDB on a cache miss.
func (s *ExamService) GetExamPayload(ctx context.Context, id primitive.ObjectID) (*model.ExamPayload, error) {
	key := config.CacheKey.ExamPayloadKey(id.Hex())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var payload model.ExamPayload
		if err := json.Unmarshal(data, &payload); err == nil {
			return &payload, nil
		}
		s.log.Warn().Str("exam_id", id.Hex()).Msg("Corrupt cached payload, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("exam_id", id.Hex()).Msg("Redis unavailable, falling back to database")
	}

	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id.Hex()).Msg("Failed to rewarm cache on miss")
	}

	studentQuestions := make([]model.QuestionForStudent, len(exam.Questions))
	for i, q := range exam.Questions {
		studentQuestions[i] = model.QuestionForStudent{
			Text:     q.Text,
			ImageURL: q.ImageURL,
			Choices:  q.Choices,
			Type:     q.Type,
		}
	}
	return &model.ExamPayload{
		ExamID:          exam.ID.Hex(),
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		Questions:       studentQuestions,
	}, nil
}

// GetAnswerKey retrieves the cached answer key hash from Redis. Values
// are JSON-encoded string lists keyed by question index.
func (s *ExamService) GetAnswerKey(ctx context.Context, id primitive.ObjectID) (map[int][]string, error) {
	key := config.CacheKey.ExamAnswerKey(id.Hex())
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("get answer key: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("answer key not cached")
	}

	answerKey := make(map[int][]string, len(raw))
	for idxStr, correctJSON := range raw {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			continue
		}
		var correct []string
		if err := json.Unmarshal([]byte(correctJSON), &correct); err != nil {
			continue
		}
		answerKey[idx] = correct
	}
	return answerKey, nil
}
