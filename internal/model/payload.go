package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionForStudent is a question stripped of its correct answers, safe
// to hand to a client taking the exam.
type QuestionForStudent struct {
	Text     string       `json:"text"`
	ImageURL string       `json:"imageUrl,omitempty"`
	Choices  []string     `json:"choices"`
	Type     QuestionType `json:"type"`
}

// ExamPayload is the cached student-facing exam document served on
// attempt open. It never carries correct answers.
type ExamPayload struct {
	ExamID          string               `json:"examId"`
	Title           string               `json:"title"`
	DurationMinutes int                  `json:"durationMinutes"`
	Questions       []QuestionForStudent `json:"questions"`
}

// ExamSummary is the listing shape: metadata only, no questions and
// therefore no answer keys. Full records stay behind the author routes.
type ExamSummary struct {
	ID              primitive.ObjectID `json:"id"`
	Title           string             `json:"title"`
	CoverImageURL   string             `json:"coverImageUrl,omitempty"`
	DurationMinutes int                `json:"durationMinutes"`
	QuestionCount   int                `json:"questionCount"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// NewExamSummary strips an exam record down to its listing shape.
func NewExamSummary(e *Exam) ExamSummary {
	return ExamSummary{
		ID:              e.ID,
		Title:           e.Title,
		CoverImageURL:   e.CoverImageURL,
		DurationMinutes: e.DurationMinutes,
		QuestionCount:   len(e.Questions),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
