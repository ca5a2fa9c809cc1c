package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attempt is a completed, graded exam attempt as persisted by the
// result worker. In-progress attempt state is never stored here; it
// lives only in the session engine and the Redis autosave hash.
type Attempt struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExamID          primitive.ObjectID `bson:"exam_id" json:"examId"`
	UserID          string             `bson:"user_id" json:"userId"`
	CorrectCount    int                `bson:"correct_count" json:"correctCount"`
	Total           int                `bson:"total" json:"total"`
	DurationSeconds int                `bson:"duration_seconds" json:"durationSeconds"`
	FocusLossCount  int                `bson:"focus_loss_count" json:"focusLossCount"`
	AutoSubmitted   bool               `bson:"auto_submitted" json:"autoSubmitted"`
	SubmittedAt     time.Time          `bson:"submitted_at" json:"submittedAt"`
}

// ProctorEventKind labels a proctoring incident reported by the client.
type ProctorEventKind string

const (
	ProctorVisibilityHidden ProctorEventKind = "visibility_hidden"
	ProctorWindowBlur       ProctorEventKind = "window_blur"
	ProctorUnloadAttempt    ProctorEventKind = "unload_attempt"
	ProctorFullscreenDenied ProctorEventKind = "fullscreen_denied"
	ProctorFullscreenExit   ProctorEventKind = "fullscreen_exit"
)

// ProctorEvent is one proctoring incident, batch-persisted for later
// review. Advisory data only; nothing acts on it during the session.
type ProctorEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExamID     primitive.ObjectID `bson:"exam_id" json:"examId"`
	UserID     string             `bson:"user_id" json:"userId"`
	Kind       ProctorEventKind   `bson:"kind" json:"kind"`
	RecordedAt time.Time          `bson:"recorded_at" json:"recordedAt"`
}
