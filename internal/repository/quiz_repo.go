package repository

import (
	"context"
	"quizlive/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// QuizRepo handles MongoDB operations for quizzes
type QuizRepo interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByKey(ctx context.Context, key string) (*model.Quiz, error)
	GetByTeacher(ctx context.Context, login, code string) ([]*model.Quiz, error)
	Update(ctx context.Context, quiz *model.Quiz) error
}

type quizRepo struct {
	collection *mongo.Collection
}

// NewQuizRepo creates a new quiz repository
func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{
		collection: db.Collection("quizzes"),
	}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	quiz.CreatedAt = time.Now()
	quiz.UpdatedAt = quiz.CreatedAt
	_, err := r.collection.InsertOne(ctx, quiz)
	return err
}

func (r *quizRepo) GetByKey(ctx context.Context, key string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&quiz)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) GetByTeacher(ctx context.Context, login, code string) ([]*model.Quiz, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"login": login, "code": code})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quizzes []*model.Quiz
	if err := cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) Update(ctx context.Context, quiz *model.Quiz) error {
	quiz.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": quiz.Key}, quiz)
	return err
}
