package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/examspark/examspark-backend/internal/model"
)

// ProctorEventRepository persists proctoring incidents for review.
type ProctorEventRepository struct {
	col *mongo.Collection
}

// NewProctorEventRepository creates a new ProctorEventRepository.
func NewProctorEventRepository(db *mongo.Database) *ProctorEventRepository {
	return &ProctorEventRepository{col: db.Collection("proctor_events")}
}

// Insert stores one incident.
func (r *ProctorEventRepository) Insert(ctx context.Context, ev *model.ProctorEvent) error {
	_, err := r.col.InsertOne(ctx, ev)
	return err
}

// InsertMany stores a batch of incidents, unordered.
func (r *ProctorEventRepository) InsertMany(ctx context.Context, events []model.ProctorEvent) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, len(events))
	for i := range events {
		docs[i] = events[i]
	}
	_, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// CountByExam returns the total incidents recorded for an exam.
func (r *ProctorEventRepository) CountByExam(ctx context.Context, examID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"exam_id": examID})
}

// ListByExam returns incidents for an exam, newest first, with pagination.
func (r *ProctorEventRepository) ListByExam(ctx context.Context, examID primitive.ObjectID, limit, offset int) ([]model.ProctorEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := r.col.Find(ctx, bson.M{"exam_id": examID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []model.ProctorEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
