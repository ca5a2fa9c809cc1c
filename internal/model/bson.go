package model

import "go.mongodb.org/mongo-driver/bson"

// questionDoc is the stored shape of a question, including the legacy
// scalar correct_answer field written before multiple-answer support.
type questionDoc struct {
	Text           string       `bson:"text"`
	ImageURL       string       `bson:"image_url,omitempty"`
	Choices        []string     `bson:"choices"`
	Type           QuestionType `bson:"type,omitempty"`
	CorrectAnswers []string     `bson:"correct_answers,omitempty"`
	LegacyCorrect  string       `bson:"correct_answer,omitempty"`
}

// UnmarshalBSON normalizes stored questions at load time: a missing
// type defaults to single, and a legacy scalar correct_answer becomes a
// one-element correct_answers set. Grading only ever sees the canonical
// shape.
func (q *Question) UnmarshalBSON(data []byte) error {
	var doc questionDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	qtype := doc.Type
	if qtype != QuestionTypeMultiple {
		qtype = QuestionTypeSingle
	}
	correct := doc.CorrectAnswers
	if len(correct) == 0 && doc.LegacyCorrect != "" {
		correct = []string{doc.LegacyCorrect}
	}
	*q = Question{
		Text:           doc.Text,
		ImageURL:       doc.ImageURL,
		Choices:        doc.Choices,
		Type:           qtype,
		CorrectAnswers: correct,
	}
	return nil
}

// MarshalBSON always writes the canonical list shape.
func (q Question) MarshalBSON() ([]byte, error) {
	return bson.Marshal(questionDoc{
		Text:           q.Text,
		ImageURL:       q.ImageURL,
		Choices:        q.Choices,
		Type:           q.Type,
		CorrectAnswers: q.CorrectAnswers,
	})
}
