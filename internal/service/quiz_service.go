package service

import (
	"context"
	"quizlive/internal/model"
	"quizlive/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// QuizService handles quiz authoring and serves frozen quiz copies to lives
type QuizService struct {
	quizRepo repository.QuizRepo
	snapshot *gocache.Cache
}

// NewQuizService creates a new quiz service; snapshots are cached for ttl
func NewQuizService(quizRepo repository.QuizRepo, ttl time.Duration) *QuizService {
	return &QuizService{
		quizRepo: quizRepo,
		snapshot: gocache.New(ttl, 2*ttl),
	}
}

// Create creates an empty quiz owned by the teacher
func (s *QuizService) Create(ctx context.Context, teacher *model.Claims, req model.CreateQuizRequest) (*model.Quiz, error) {
	if err := requireTeacher(teacher); err != nil {
		return nil, err
	}
	if err := requireText("name", req.Name); err != nil {
		return nil, err
	}
	quiz := &model.Quiz{
		Key:        uuid.NewString(),
		Login:      teacher.Login,
		Code:       teacher.Code,
		Name:       strings.TrimSpace(req.Name),
		Categories: req.Categories,
		Items:      model.QuizItems{},
	}
	if quiz.Categories == nil {
		quiz.Categories = []string{}
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, model.TransientStore("create quiz", err)
	}
	return quiz, nil
}

// Get retrieves a quiz the teacher owns
func (s *QuizService) Get(ctx context.Context, teacher *model.Claims, key string) (*model.Quiz, error) {
	if err := requireTeacher(teacher); err != nil {
		return nil, err
	}
	quiz, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if quiz.Login != teacher.Login || quiz.Code != teacher.Code {
		return nil, model.Unauthorized("quiz %s belongs to another teacher", key)
	}
	return quiz, nil
}

// ListByTeacher retrieves all quizzes of a teacher
func (s *QuizService) ListByTeacher(ctx context.Context, teacher *model.Claims) ([]*model.Quiz, error) {
	if err := requireTeacher(teacher); err != nil {
		return nil, err
	}
	quizzes, err := s.quizRepo.GetByTeacher(ctx, teacher.Login, teacher.Code)
	if err != nil {
		return nil, model.TransientStore("list quizzes", err)
	}
	if quizzes == nil {
		quizzes = []*model.Quiz{}
	}
	return quizzes, nil
}

// PutItem validates item and stores it, replacing the item at its position or
// appending it right after the last one
func (s *QuizService) PutItem(ctx context.Context, teacher *model.Claims, key string, item model.QuizItem) (*model.Quiz, error) {
	if item == nil {
		return nil, model.MissingField("item")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, teacher, key, func(q model.Quiz) (model.Quiz, error) {
		return q.WithItem(item)
	})
}

// RemoveItem deletes the item at position; later items move up by one
func (s *QuizService) RemoveItem(ctx context.Context, teacher *model.Claims, key string, position int) (*model.Quiz, error) {
	return s.update(ctx, teacher, key, func(q model.Quiz) (model.Quiz, error) {
		updated, found := q.WithoutItem(position)
		if !found {
			return q, model.NotFound("quiz %s has no item at position %d", key, position)
		}
		return updated, nil
	})
}

func (s *QuizService) update(ctx context.Context, teacher *model.Claims, key string, fn func(model.Quiz) (model.Quiz, error)) (*model.Quiz, error) {
	quiz, err := s.Get(ctx, teacher, key)
	if err != nil {
		return nil, err
	}
	updated, err := fn(*quiz)
	if err != nil {
		return nil, err
	}
	if err := s.quizRepo.Update(ctx, &updated); err != nil {
		return nil, model.TransientStore("update quiz", err)
	}
	s.snapshot.Delete(key)
	return &updated, nil
}

// FetchQuizSnapshot returns a private copy of the quiz for a new live
func (s *QuizService) FetchQuizSnapshot(ctx context.Context, key string) (model.Quiz, error) {
	if cached, ok := s.snapshot.Get(key); ok {
		return cached.(model.Quiz).Clone(), nil
	}
	quiz, err := s.load(ctx, key)
	if err != nil {
		return model.Quiz{}, err
	}
	s.snapshot.SetDefault(key, quiz.Clone())
	return quiz.Clone(), nil
}

func (s *QuizService) load(ctx context.Context, key string) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, model.TransientStore("get quiz", err)
	}
	if quiz == nil {
		return nil, model.NotFound("quiz %s not found", key)
	}
	return quiz, nil
}

func requireTeacher(claims *model.Claims) error {
	if claims == nil {
		return model.Unauthorized("missing credentials")
	}
	if claims.Role != model.RoleTeacher {
		return model.Unauthorized("%s is not a teacher", model.ParticipantKey(claims.Login, claims.Code))
	}
	return nil
}
