package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/examspark/examspark-backend/internal/grading"
	"github.com/examspark/examspark-backend/internal/middleware"
	"github.com/examspark/examspark-backend/internal/model"
	"github.com/examspark/examspark-backend/internal/repository"
	"github.com/examspark/examspark-backend/internal/response"
	"github.com/examspark/examspark-backend/internal/service"
	"github.com/examspark/examspark-backend/internal/validator"
)

// AttemptHandler handles the REST grading endpoint and attempt review.
type AttemptHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "attempt_handler").Logger(),
	}
}

// GradeExam godoc
// POST /api/v1/exams/:id/grade
// Grades a finished attempt server-side against the stored answer key
// and returns the scorecard with a per-question review. The attempt is
// queued for persistence; the response never waits on MongoDB.
func (h *AttemptHandler) GradeExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctx := c.Request.Context()
	userID := claims.UserID()

	attempt, questions, err := h.attemptService.Grade(ctx, examID, userID, req.Answers, 0, 0, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.attemptService.QueueResult(ctx, attempt)
	h.attemptService.ClearProgress(ctx, examID.Hex(), userID)
	h.attemptService.PublishMonitorEvent(ctx, examID.Hex(), map[string]interface{}{
		"type":          "submit",
		"user_id":       userID,
		"correct_count": attempt.CorrectCount,
		"total":         attempt.Total,
	})

	response.Success(c, http.StatusOK, gin.H{
		"correctCount": attempt.CorrectCount,
		"total":        attempt.Total,
		"review":       grading.BuildReview(questions, req.Answers),
	})
}

// ListAttempts godoc
// GET /api/v1/exams/:id/attempts?page=&per_page=
// Lists persisted attempts for an exam, newest first. Author-only.
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	examID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	attempts, pagination, err := h.attemptService.ListByExam(c.Request.Context(), examID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, pagination)
}
