package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/examspark/examspark-backend/internal/model"
)

// AttemptRepository persists graded exam attempts.
type AttemptRepository struct {
	col *mongo.Collection
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{col: db.Collection("attempts")}
}

// Insert stores one graded attempt.
func (r *AttemptRepository) Insert(ctx context.Context, attempt *model.Attempt) error {
	_, err := r.col.InsertOne(ctx, attempt)
	return err
}

// InsertMany stores a batch of graded attempts, unordered so one bad
// document does not sink the rest.
func (r *AttemptRepository) InsertMany(ctx context.Context, attempts []model.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}
	docs := make([]interface{}, len(attempts))
	for i := range attempts {
		docs[i] = attempts[i]
	}
	_, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// ListByExam returns attempts for an exam, newest first, with pagination.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID primitive.ObjectID, limit, offset int) ([]model.Attempt, int64, error) {
	filter := bson.M{"exam_id": examID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var attempts []model.Attempt
	if err := cur.All(ctx, &attempts); err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}
