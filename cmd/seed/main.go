package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"quizlive/internal/config"
	"quizlive/internal/model"
	"quizlive/internal/repository"
	"quizlive/internal/service"
	"time"

	"github.com/lmittmann/tint"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// seed registers a demo teacher and pupil and a quiz holding every item type
func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	auth := service.NewAuthService(repository.NewUserRepo(db), cfg.JWTSecret, cfg.TokenTTL)
	quizzes := service.NewQuizService(repository.NewQuizRepo(db), 0)

	if err := seed(ctx, auth, quizzes); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, auth *service.AuthService, quizzes *service.QuizService) error {
	teacher, err := auth.Register(ctx, model.RegisterRequest{Login: "marie", Name: "Marie Curie", Password: "teacher123", Role: model.RoleTeacher})
	if err != nil {
		return err
	}
	pupil, err := auth.Register(ctx, model.RegisterRequest{Login: "alice", Name: "Alice", Password: "pupil123", Role: model.RolePupil})
	if err != nil {
		return err
	}

	claims := &model.Claims{Login: teacher.Login, Code: teacher.Code, Role: teacher.Role}
	quiz, err := quizzes.Create(ctx, claims, model.CreateQuizRequest{Name: "Physics warm-up", Categories: []string{"physics"}})
	if err != nil {
		return err
	}
	for _, item := range demoItems() {
		if quiz, err = quizzes.PutItem(ctx, claims, quiz.Key, item); err != nil {
			return fmt.Errorf("item %d: %w", item.ItemPosition(), err)
		}
	}

	fmt.Printf("teacher: %s#%s (password teacher123)\n", teacher.Login, teacher.Code)
	fmt.Printf("pupil:   %s#%s (password pupil123)\n", pupil.Login, pupil.Code)
	fmt.Printf("quiz:    %s with %d items\n", quiz.Key, len(quiz.Items))
	return nil
}

func demoItems() []model.QuizItem {
	scored := func(position int, expected ...string) model.Scored {
		return model.Scored{Position: position, ExpectedAnswers: expected, TimerSeconds: 30, Reward: 100}
	}
	return []model.QuizItem{
		model.TitleSlide{Position: 1, Title: "Physics warm-up", Subtitle: "Ten minutes, no notes"},
		model.MultipleChoice{
			Scored:   scored(2, "Newton"),
			Question: "What is the SI unit of force?",
			Options:  []string{"Joule", "Newton", "Watt", "Pascal"},
		},
		model.FillSpace{
			Scored:   scored(3, "9.8"),
			Sentence: "Gravity accelerates objects at ___ m/s² near the surface of the Earth.",
			Options:  []string{"9.8", "3.0", "1.6"},
		},
		model.TrueFalse{Scored: scored(4, model.AnswerFalse), Statement: "Sound travels faster than light."},
		model.TextSlide{Position: 5, Title: "Energy", Text: "Energy is conserved in a closed system."},
		model.OpenText{Scored: scored(6), Question: "Describe an everyday example of friction."},
		model.MediaSlide{Position: 7, Title: "Pendulum", URL: "https://upload.wikimedia.org/wikipedia/commons/2/24/Oscillating_pendulum.gif"},
		model.Poll{
			Scored:   model.Scored{Position: 8, TimerSeconds: 20},
			Question: "Which topic should we cover next?",
			Options:  []string{"Optics", "Electricity", "Thermodynamics"},
		},
		model.WordCloud{Scored: model.Scored{Position: 9, TimerSeconds: 20}, Question: "One word that describes physics for you"},
	}
}
