package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/examspark/examspark-backend/internal/model"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// ExamRepository handles exam document access.
type ExamRepository struct {
	col *mongo.Collection
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(db *mongo.Database) *ExamRepository {
	return &ExamRepository{col: db.Collection("exams")}
}

// GetByID retrieves an exam by its ObjectID.
func (r *ExamRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Exam, error) {
	var exam model.Exam
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&exam)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

// Search lists exams newest-first, optionally filtered by a
// case-insensitive title substring, with pagination.
func (r *ExamRepository) Search(ctx context.Context, query string, limit, offset int) ([]model.Exam, int64, error) {
	filter := bson.M{}
	if query != "" {
		filter["title"] = bson.M{"$regex": query, "$options": "i"}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var exams []model.Exam
	if err := cur.All(ctx, &exams); err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

// Create inserts a new exam and fills in ID and timestamps.
func (r *ExamRepository) Create(ctx context.Context, exam *model.Exam) error {
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, exam)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		exam.ID = oid
	}
	return nil
}

// Update replaces an exam's mutable fields in place.
func (r *ExamRepository) Update(ctx context.Context, exam *model.Exam) error {
	exam.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"title":            exam.Title,
		"cover_image_url":  exam.CoverImageURL,
		"duration_minutes": exam.DurationMinutes,
		"questions":        exam.Questions,
		"updated_at":       exam.UpdatedAt,
	}}

	res, err := r.col.UpdateByID(ctx, exam.ID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an exam document.
func (r *ExamRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every exam, used for cache prewarming on startup.
func (r *ExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var exams []model.Exam
	if err := cur.All(ctx, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}
