package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/examspark/examspark-backend/internal/model"
	"github.com/examspark/examspark-backend/internal/repository"
	"github.com/examspark/examspark-backend/internal/response"
	"github.com/examspark/examspark-backend/internal/service"
	"github.com/examspark/examspark-backend/internal/validator"
)

// ExamHandler handles exam authoring and retrieval endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/exams?q=&page=&per_page=
// Lists exams newest first, optionally filtered by a title search.
// Serves summaries only; questions and answer keys never leave the
// author routes.
func (h *ExamHandler) ListExams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	query := c.Query("q")

	exams, pagination, err := h.examService.Search(c.Request.Context(), query, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	summaries := make([]model.ExamSummary, 0, len(exams))
	for i := range exams {
		summaries = append(summaries, model.NewExamSummary(&exams[i]))
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": summaries}, pagination)
}

// GetExam godoc
// GET /api/v1/exams/:id
// Returns the full exam record, correct answers included. Author-only.
func (h *ExamHandler) GetExam(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// GetExamPayload godoc
// GET /api/v1/exams/:id/payload
// Returns the student-facing exam payload, without correct answers.
func (h *ExamHandler) GetExamPayload(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.examService.GetExamPayload(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": payload})
}

// CreateExam godoc
// POST /api/v1/exams
// Creates a new exam.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// UpdateExam godoc
// PUT /api/v1/exams/:id
// Applies a partial edit; questions, when present, replace the set.
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// DeleteExam godoc
// DELETE /api/v1/exams/:id
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id); err != nil {
		failExamError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// failExamError maps domain errors onto the response envelope.
func failExamError(c *gin.Context, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		code := response.ErrValidation
		switch ve.Kind {
		case model.ValidationMissingTitle:
			code = response.ErrMissingTitle
		case model.ValidationInsufficientChoices:
			code = response.ErrInsufficientChoices
		case model.ValidationNoCorrectAnswer:
			code = response.ErrNoCorrectAnswer
		}
		fields := map[string]string{"detail": ve.Error()}
		if ve.QuestionIndex >= 0 {
			fields["questionIndex"] = strconv.Itoa(ve.QuestionIndex)
		}
		response.FailWithFields(c, http.StatusBadRequest, code, fields)
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
