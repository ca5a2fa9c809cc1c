package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDurationMinutes is applied when an exam is created or updated
// without a usable duration value.
const DefaultDurationMinutes = 30

// QuestionType discriminates single- from multiple-answer questions.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
)

// Question is one prompt inside an exam. Choices are ordered for
// display; correctness comparisons treat CorrectAnswers as a set.
type Question struct {
	Text           string       `bson:"text" json:"text"`
	ImageURL       string       `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Choices        []string     `bson:"choices" json:"choices"`
	Type           QuestionType `bson:"type" json:"type"`
	CorrectAnswers []string     `bson:"correct_answers" json:"correctAnswers"`
}

// Exam is the canonical exam record.
type Exam struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	CoverImageURL   string             `bson:"cover_image_url,omitempty" json:"coverImageUrl,omitempty"`
	DurationMinutes int                `bson:"duration_minutes" json:"durationMinutes"`
	Questions       []Question         `bson:"questions" json:"questions"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// RenameChoice changes the display text of choice i and propagates the
// change into CorrectAnswers: a correct choice keeps being correct under
// its new text, and is dropped entirely when cleared to empty. Authoring
// only; choices are immutable once an attempt has started.
func (q *Question) RenameChoice(i int, text string) {
	if i < 0 || i >= len(q.Choices) {
		return
	}
	old := q.Choices[i]
	q.Choices[i] = text
	if old == text {
		return
	}
	kept := q.CorrectAnswers[:0]
	for _, ans := range q.CorrectAnswers {
		switch {
		case ans != old:
			kept = append(kept, ans)
		case text != "":
			kept = append(kept, text)
		}
	}
	q.CorrectAnswers = kept
}

// Minutes is a duration-in-minutes field tolerant of sloppy wire input:
// numbers, numeric strings and strings with unit suffixes ("45 minutes")
// all parse; anything else decodes to zero so the default can apply.
type Minutes int

// UnmarshalJSON accepts a JSON number, a numeric string, or null.
func (m *Minutes) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*m = Minutes(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		n, err := strconv.Atoi(digits)
		if err == nil {
			*m = Minutes(n)
		}
		return nil
	}
	// null or an unusable shape: leave zero, the default kicks in later.
	*m = 0
	return nil
}

// OrDefault resolves the effective duration.
func (m Minutes) OrDefault() int {
	if m <= 0 {
		return DefaultDurationMinutes
	}
	return int(m)
}

// QuestionPayload is the authoring wire shape of a question. It also
// accepts the legacy scalar correctAnswer field written by earlier
// releases; Normalize folds it into the list form.
type QuestionPayload struct {
	Text           string   `json:"text" binding:"required,min=1,max=2000"`
	ImageURL       string   `json:"imageUrl" binding:"omitempty,max=2048"`
	Choices        []string `json:"choices" binding:"required,min=2"`
	Type           string   `json:"type" binding:"omitempty,oneof=single multiple"`
	CorrectAnswers []string `json:"correctAnswers" binding:"omitempty"`
	CorrectAnswer  string   `json:"correctAnswer" binding:"omitempty"`
}

// Normalize produces the canonical Question: type defaults to single,
// and a legacy scalar correctAnswer becomes a one-element set when the
// list form is absent.
func (p QuestionPayload) Normalize() Question {
	qtype := QuestionType(p.Type)
	if qtype != QuestionTypeMultiple {
		qtype = QuestionTypeSingle
	}
	correct := p.CorrectAnswers
	if len(correct) == 0 && p.CorrectAnswer != "" {
		correct = []string{p.CorrectAnswer}
	}
	if correct == nil {
		correct = []string{}
	}
	return Question{
		Text:           p.Text,
		ImageURL:       p.ImageURL,
		Choices:        p.Choices,
		Type:           qtype,
		CorrectAnswers: correct,
	}
}

// NormalizeQuestions maps a payload slice into canonical questions.
func NormalizeQuestions(payloads []QuestionPayload) []Question {
	questions := make([]Question, len(payloads))
	for i, p := range payloads {
		questions[i] = p.Normalize()
	}
	return questions
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string            `json:"title" binding:"required,min=1,max=255"`
	CoverImageURL   string            `json:"coverImageUrl" binding:"omitempty,max=2048"`
	DurationMinutes Minutes           `json:"durationMinutes"`
	Questions       []QuestionPayload `json:"questions" binding:"required,dive"`
}

// UpdateExamRequest is the payload for editing an exam. Questions are
// replaced wholesale; title and duration are updated only when usable
// values are provided; a nil cover keeps the existing image and an
// explicit empty string removes it.
type UpdateExamRequest struct {
	Title           string            `json:"title" binding:"omitempty,max=255"`
	CoverImageURL   *string           `json:"coverImageUrl" binding:"omitempty,max=2048"`
	DurationMinutes Minutes           `json:"durationMinutes"`
	Questions       []QuestionPayload `json:"questions" binding:"omitempty,dive"`
}

// GradeRequest is the payload for the authoritative grading endpoint.
type GradeRequest struct {
	Answers AnswerMap `json:"answers" binding:"required"`
}
