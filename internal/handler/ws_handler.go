package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/examspark/examspark-backend/internal/grading"
	"github.com/examspark/examspark-backend/internal/middleware"
	"github.com/examspark/examspark-backend/internal/model"
	"github.com/examspark/examspark-backend/internal/service"
	"github.com/examspark/examspark-backend/internal/session"
	ws "github.com/examspark/examspark-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler drives live exam attempts over WebSocket. Each connection
// owns one session runner; the runner's ticker is the authoritative
// exam clock.
type WSHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamService, attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService:    examService,
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamAttemptStream godoc
// WS /ws/v1/exams/:exam_id/attempt
// Upgrades to WebSocket and runs one exam attempt end to end.
func (h *WSHandler) ExamAttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := primitive.ObjectIDFromHex(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "exam not found"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	userID := claims.UserID()

	wsLog := h.log.With().
		Str("user_id", userID).
		Str("exam_id", examID.Hex()).
		Logger()

	stream := &attemptStream{
		conn:           conn,
		runner:         session.NewRunner(exam),
		attemptService: h.attemptService,
		examID:         examID,
		userID:         userID,
		log:            wsLog,
	}
	defer stream.runner.Stop()

	stream.runner.OnState = stream.sendTick
	stream.runner.OnAutoSubmit = stream.finish

	wsLog.Info().Msg("Attempt stream connected")
	stream.sendState(stream.runner.Snapshot())
	stream.loop()
	wsLog.Info().Msg("Attempt stream closed")
}

// attemptStream is the per-connection state of one live attempt.
type attemptStream struct {
	conn           *ws.Conn
	runner         *session.Runner
	attemptService *service.AttemptService
	examID         primitive.ObjectID
	userID         string
	log            zerolog.Logger
}

func (st *attemptStream) loop() {
	for {
		var msg ws.RequestPayload
		if err := st.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				st.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				st.log.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionStart:
			st.handleStart()
		case ws.ActionAnswer:
			st.handleAnswer(&msg)
		case ws.ActionToggle:
			st.handleToggle(&msg)
		case ws.ActionNext:
			st.sendState(st.runner.Next())
		case ws.ActionPrevious:
			st.sendState(st.runner.Previous())
		case ws.ActionProctor:
			st.handleProctor(&msg)
		case ws.ActionSubmit:
			st.maybeFinish(st.runner.RequestSubmit())
		case ws.ActionConfirm:
			st.maybeFinish(st.runner.ConfirmSubmit())
		case ws.ActionCancel:
			st.sendState(st.runner.CancelSubmit())
		case ws.ActionRetake:
			st.handleRetake()
		case ws.ActionPing:
			_ = st.conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			st.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = st.conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// handleStart activates the attempt, restores any autosaved answers
// from an earlier connection and stamps the start time.
func (st *attemptStream) handleStart() {
	ctx := context.Background()
	state := st.runner.Start()

	if saved, err := st.attemptService.LoadProgress(ctx, st.examID.Hex(), st.userID); err == nil && len(saved) > 0 {
		for idx, values := range saved {
			state = st.runner.SetAnswer(idx, values...)
		}
		st.log.Info().Int("restored", len(saved)).Msg("Autosaved answers restored")
	}

	if err := st.attemptService.RecordStart(ctx, st.examID.Hex(), st.userID); err != nil {
		st.log.Warn().Err(err).Msg("Failed to record attempt start")
	}
	st.attemptService.PublishMonitorEvent(ctx, st.examID.Hex(), map[string]interface{}{
		"type":    "join",
		"user_id": st.userID,
	})

	st.sendState(state)
}

func (st *attemptStream) handleAnswer(msg *ws.RequestPayload) {
	values := msg.Values
	if values == nil && msg.Value != "" {
		values = []string{msg.Value}
	}

	state := st.runner.SetAnswer(msg.QuestionIndex, values...)
	st.autosave(msg.QuestionIndex, state)
	st.sendState(state)
}

func (st *attemptStream) handleToggle(msg *ws.RequestPayload) {
	state := st.runner.ToggleChoice(msg.QuestionIndex, msg.Value)
	st.autosave(msg.QuestionIndex, state)
	st.sendState(state)
}

func (st *attemptStream) autosave(idx int, state session.State) {
	if state.Phase != session.PhaseActive {
		return
	}
	if err := st.attemptService.SaveProgress(context.Background(), st.examID.Hex(), st.userID, idx, state.Answers[idx]); err != nil {
		st.log.Warn().Err(err).Int("question", idx).Msg("Autosave failed")
	}
}

// handleProctor applies a client-reported proctoring signal. Incidents
// are queued for persistence and fanned out to the monitor; the
// fullscreen acknowledgement is neither.
func (st *attemptStream) handleProctor(msg *ws.RequestPayload) {
	if msg.Signal == ws.SignalFullscreenEntered {
		st.sendState(st.runner.EnterFullscreen())
		return
	}

	kind := model.ProctorEventKind(msg.Signal)
	switch kind {
	case model.ProctorVisibilityHidden, model.ProctorWindowBlur, model.ProctorUnloadAttempt,
		model.ProctorFullscreenDenied, model.ProctorFullscreenExit:
	default:
		_ = st.conn.WriteError("unknown proctor signal: " + msg.Signal)
		return
	}

	state, warning := st.runner.Signal(kind)
	if state.Phase != session.PhaseActive {
		st.sendState(state)
		return
	}

	ctx := context.Background()
	st.attemptService.QueueProctorEvent(ctx, &model.ProctorEvent{
		ExamID:     st.examID,
		UserID:     st.userID,
		Kind:       kind,
		RecordedAt: time.Now().UTC(),
	})
	st.attemptService.PublishMonitorEvent(ctx, st.examID.Hex(), map[string]interface{}{
		"type":             "proctor",
		"user_id":          st.userID,
		"kind":             string(kind),
		"focus_loss_count": state.FocusLossCount,
	})

	if warning != nil {
		_ = st.conn.WriteTyped(ws.WarningResponse{
			Event:   ws.EventWarning,
			Kind:    string(warning.Kind),
			Message: warning.Message,
		})
	}
	st.sendState(state)
}

func (st *attemptStream) handleRetake() {
	state := st.runner.Retake()
	st.attemptService.ClearProgress(context.Background(), st.examID.Hex(), st.userID)
	st.sendState(state)
}

// maybeFinish routes a submit transition: a finalized state emits the
// scorecard, anything else just reports the new state (for example the
// unanswered-questions confirmation prompt).
func (st *attemptStream) maybeFinish(state session.State) {
	if state.Phase == session.PhaseSubmitted {
		st.finish(state)
		return
	}
	st.sendState(state)
}

// finish persists and reports a submitted attempt. It is also the
// runner's auto-submit callback, so it must tolerate being called from
// the ticker goroutine; the connection wrapper serializes writes.
func (st *attemptStream) finish(state session.State) {
	ctx := context.Background()

	attempt := &model.Attempt{
		ID:              primitive.NewObjectID(),
		ExamID:          st.examID,
		UserID:          st.userID,
		CorrectCount:    state.Result.CorrectCount,
		Total:           state.Result.Total,
		DurationSeconds: state.TimeTakenSeconds(),
		FocusLossCount:  state.FocusLossCount,
		AutoSubmitted:   state.AutoSubmitted,
		SubmittedAt:     time.Now().UTC(),
	}

	st.attemptService.QueueResult(ctx, attempt)
	st.attemptService.ClearProgress(ctx, st.examID.Hex(), st.userID)
	st.attemptService.PublishMonitorEvent(ctx, st.examID.Hex(), map[string]interface{}{
		"type":          "submit",
		"user_id":       st.userID,
		"correct_count": attempt.CorrectCount,
		"total":         attempt.Total,
		"auto":          attempt.AutoSubmitted,
	})

	st.log.Info().
		Int("correct", attempt.CorrectCount).
		Int("total", attempt.Total).
		Bool("auto", attempt.AutoSubmitted).
		Msg("Attempt submitted and graded")

	_ = st.conn.WriteTyped(ws.GradedResponse{
		Event:            ws.EventGraded,
		CorrectCount:     attempt.CorrectCount,
		Total:            attempt.Total,
		TimeTakenSeconds: attempt.DurationSeconds,
		FocusLossCount:   attempt.FocusLossCount,
		AutoSubmitted:    attempt.AutoSubmitted,
		Review:           grading.BuildReview(state.Questions(), state.Answers),
	})
}

// sendTick is the runner's per-second callback.
func (st *attemptStream) sendTick(state session.State) {
	_ = st.conn.WriteTyped(ws.TickResponse{
		Event:         ws.EventTick,
		TimeRemaining: state.TimeRemaining,
	})
}

func (st *attemptStream) sendState(state session.State) {
	_ = st.conn.WriteTyped(ws.StateResponse{
		Event:             ws.EventState,
		Phase:             string(state.Phase),
		CurrentIndex:      state.CurrentIndex,
		TimeRemaining:     state.TimeRemaining,
		FocusLossCount:    state.FocusLossCount,
		Answers:           state.Answers,
		SkipWarning:       state.SkipWarning,
		AwaitingConfirm:   state.AwaitingConfirm,
		PendingUnanswered: state.PendingUnanswered,
		Fullscreen:        state.Fullscreen,
	})
}
