package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/examspark/examspark-backend/internal/config"
	"github.com/examspark/examspark-backend/internal/response"
	"github.com/examspark/examspark-backend/internal/service"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler streams an exam's live activity feed over SSE. Events
// originate from attempt streams and the grading endpoint, fanned out
// through Redis Pub/Sub so monitors on any instance see them.
type MonitorHandler struct {
	rdb            *redis.Client
	examService    *service.ExamService
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, examService *service.ExamService, attemptService *service.AttemptService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		examService:    examService,
		attemptService: attemptService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorExamSSE godoc
// GET /api/v1/exams/:id/monitor
// Attaches to the live monitor feed for one exam. Author-only.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
	examID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Initial snapshot: the exam shape plus what is already persisted.
	attempts, pagination, err := h.attemptService.ListByExam(reqCtx, examID, 1, 100)
	if err != nil {
		h.log.Warn().Err(err).Str("exam_id", examID.Hex()).Msg("Failed to load attempts for snapshot")
	}
	totalAttempts := 0
	if pagination != nil {
		totalAttempts = pagination.TotalItems
	}

	totalIncidents, incidents, err := h.attemptService.ProctorActivity(reqCtx, examID, 20)
	if err != nil {
		h.log.Warn().Err(err).Str("exam_id", examID.Hex()).Msg("Failed to load proctor activity for snapshot")
	}

	c.SSEvent("message", map[string]interface{}{
		"type": "snapshot",
		"data": map[string]interface{}{
			"exam": map[string]interface{}{
				"id":              examID.Hex(),
				"title":           exam.Title,
				"duration":        exam.DurationMinutes,
				"total_questions": len(exam.Questions),
			},
			"total_attempts":   totalAttempts,
			"attempts":         attempts,
			"total_incidents":  totalIncidents,
			"recent_incidents": incidents,
		},
	})
	c.Writer.Flush()

	channelName := config.CacheKey.ExamMonitorChannel(examID.Hex())
	pubsub := h.rdb.Subscribe(reqCtx, channelName)
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Str("exam_id", examID.Hex()).Msg("Author attached to live monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("exam_id", examID.Hex()).Msg("Author disconnected from live monitor SSE")
			return

		case msg, ok := <-ch:
			// The channel closes when Redis drops; end the stream so the
			// client reconnects instead of deref'ing a nil message.
			if !ok {
				h.log.Warn().Str("exam_id", examID.Hex()).Msg("Monitor pubsub channel closed")
				return
			}
			// Forward raw JSON directly, no deserialization needed
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
