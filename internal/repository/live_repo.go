package repository

import (
	"context"
	"quizlive/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LiveRepo is the durable store of lives: an initial record at creation and
// the final snapshot once a live completes.
type LiveRepo interface {
	Save(ctx context.Context, live *model.Live) error
	Get(ctx context.Context, key string) (*model.Live, error)
	ListByTeacher(ctx context.Context, login, code string) ([]*model.Live, error)
}

type liveRepo struct {
	collection *mongo.Collection
}

// NewLiveRepo creates a new live repository
func NewLiveRepo(db *mongo.Database) LiveRepo {
	return &liveRepo{
		collection: db.Collection("lives"),
	}
}

// Save upserts by key, so re-flushing a completed live is harmless.
func (r *liveRepo) Save(ctx context.Context, live *model.Live) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": live.Key}, live, opts)
	return err
}

func (r *liveRepo) Get(ctx context.Context, key string) (*model.Live, error) {
	var live model.Live
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&live)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &live, nil
}

func (r *liveRepo) ListByTeacher(ctx context.Context, login, code string) ([]*model.Live, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedOn", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"teacher.login": login, "teacher.code": code}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lives []*model.Live
	if err := cursor.All(ctx, &lives); err != nil {
		return nil, err
	}
	return lives, nil
}
