package repository

import (
	"context"
	"quizlive/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, login, code string) (*model.User, error)
	Exists(ctx context.Context, login, code string) (bool, error)
}

type userRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{
		collection: db.Collection("users"),
	}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = model.ParticipantKey(user.Login, user.Code)
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *userRepo) Get(ctx context.Context, login, code string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": model.ParticipantKey(login, code)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Exists(ctx context.Context, login, code string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": model.ParticipantKey(login, code)})
	return n > 0, err
}
