package grading

import "github.com/examspark/examspark-backend/internal/model"

// QuestionReview annotates one question for the results screen: the
// full question, what was selected, and whether it scored.
type QuestionReview struct {
	Text           string   `json:"text"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	Choices        []string `json:"choices"`
	CorrectAnswers []string `json:"correctAnswers"`
	Selected       []string `json:"selected"`
	Correct        bool     `json:"correct"`
	Unanswered     bool     `json:"unanswered"`
}

// BuildReview produces the per-question breakdown for a graded attempt.
func BuildReview(questions []model.Question, answers model.AnswerMap) []QuestionReview {
	review := make([]QuestionReview, len(questions))
	for i, q := range questions {
		selected := answers[i]
		if selected == nil {
			selected = []string{}
		}
		review[i] = QuestionReview{
			Text:           q.Text,
			ImageURL:       q.ImageURL,
			Choices:        q.Choices,
			CorrectAnswers: q.CorrectAnswers,
			Selected:       selected,
			Correct:        Correct(q, selected),
			Unanswered:     len(selected) == 0,
		}
	}
	return review
}
