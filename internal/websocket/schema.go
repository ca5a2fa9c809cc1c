package websocket

import (
	"github.com/examspark/examspark-backend/internal/grading"
	"github.com/examspark/examspark-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart    Action = "start"
	ActionAnswer   Action = "answer"
	ActionToggle   Action = "toggle"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionProctor  Action = "proctor"
	ActionSubmit   Action = "submit"
	ActionConfirm  Action = "confirm"
	ActionCancel   Action = "cancel"
	ActionRetake   Action = "retake"
	ActionPing     Action = "ping"
)

// RequestPayload is the single client message shape; irrelevant fields
// are left at their zero values per action.
type RequestPayload struct {
	Action Action `json:"action"`

	// answer / toggle
	QuestionIndex int      `json:"questionIndex"`
	Value         string   `json:"value,omitempty"`
	Values        []string `json:"values,omitempty"`

	// proctor: one of the model.ProctorEventKind values, plus the
	// "fullscreen_entered" acknowledgement.
	Signal string `json:"signal,omitempty"`
}

// SignalFullscreenEntered acknowledges a successful fullscreen switch;
// it is not an incident and is not persisted.
const SignalFullscreenEntered = "fullscreen_entered"

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState   Event = "state"
	EventTick    Event = "tick"
	EventWarning Event = "warning"
	EventGraded  Event = "graded"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// StateResponse is the full attempt snapshot sent after every client
// action and on reconnect.
type StateResponse struct {
	Event             Event           `json:"event"`
	Phase             string          `json:"phase"`
	CurrentIndex      int             `json:"currentIndex"`
	TimeRemaining     int             `json:"timeRemaining"`
	FocusLossCount    int             `json:"focusLossCount"`
	Answers           model.AnswerMap `json:"answers"`
	SkipWarning       bool            `json:"skipWarning"`
	AwaitingConfirm   bool            `json:"awaitingConfirm"`
	PendingUnanswered int             `json:"pendingUnanswered"`
	Fullscreen        bool            `json:"fullscreen"`
}

// TickResponse carries the once-per-second countdown update.
type TickResponse struct {
	Event         Event `json:"event"`
	TimeRemaining int   `json:"timeRemaining"`
}

// WarningResponse surfaces an advisory proctoring or skip notice.
type WarningResponse struct {
	Event   Event  `json:"event"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GradedResponse is the final scorecard, sent on manual and auto submit.
type GradedResponse struct {
	Event            Event                    `json:"event"`
	CorrectCount     int                      `json:"correctCount"`
	Total            int                      `json:"total"`
	TimeTakenSeconds int                      `json:"timeTakenSeconds"`
	FocusLossCount   int                      `json:"focusLossCount"`
	AutoSubmitted    bool                     `json:"autoSubmitted"`
	Review           []grading.QuestionReview `json:"review"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
