package service

import (
	"context"
	"io"
	"log/slog"
	"quizlive/internal/model"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// QuizCatalog hands out frozen quiz copies
type QuizCatalog interface {
	FetchQuizSnapshot(ctx context.Context, key string) (model.Quiz, error)
}

// CredentialChecker validates bearer tokens
type CredentialChecker interface {
	ValidateToken(token string) (*model.Claims, error)
	CheckCredentials(token, login, code string) (*model.Claims, error)
}

// LiveService validates and authorizes live commands and runs them through the store
type LiveService struct {
	store   *LiveStore
	quizzes QuizCatalog
	auth    CredentialChecker
	random  io.Reader
	now     func() time.Time
	logger  *slog.Logger
}

// NewLiveService creates a new live service. random feeds live key generation.
func NewLiveService(store *LiveStore, quizzes QuizCatalog, auth CredentialChecker, random io.Reader, logger *slog.Logger) *LiveService {
	return &LiveService{
		store:   store,
		quizzes: quizzes,
		auth:    auth,
		random:  random,
		now:     time.Now,
		logger:  logger,
	}
}

// CreateLive opens a live on a copy of the quiz
func (s *LiveService) CreateLive(ctx context.Context, cmd model.CreateLiveCommand) (*model.Live, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireRole(cmd.Token, cmd.TeacherLogin, cmd.TeacherCode, model.RoleTeacher); err != nil {
		return nil, err
	}

	quiz, err := s.quizzes.FetchQuizSnapshot(ctx, cmd.QuizKey)
	if err != nil {
		return nil, err
	}
	if quiz.Login != cmd.TeacherLogin || quiz.Code != cmd.TeacherCode {
		return nil, model.Unauthorized("quiz %s belongs to another teacher", cmd.QuizKey)
	}

	key, err := s.newKey(cmd.TeacherLogin, cmd.TeacherCode)
	if err != nil {
		return nil, err
	}
	live, err := model.NewLive(key, cmd.TeacherLogin, cmd.TeacherCode, quiz, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, &live); err != nil {
		return nil, err
	}

	s.logger.Info("live created", "live_key", key, "quiz", quiz.Key, "items", len(quiz.Items))
	return &live, nil
}

// newKey builds "Live-<random>-<login>#<code>"
func (s *LiveService) newKey(login, code string) (string, error) {
	id, err := uuid.NewRandomFromReader(s.random)
	if err != nil {
		return "", errors.Wrap(err, "generate live key")
	}
	return "Live-" + id.String() + "-" + model.ParticipantKey(login, code), nil
}

func (s *LiveService) NextPosition(ctx context.Context, cmd model.TeacherLiveCommand) (*model.Live, error) {
	return s.teacherCommand(ctx, cmd, model.Live.NextPosition)
}

// PreviousPosition moves back one item. The position is not floored at zero.
func (s *LiveService) PreviousPosition(ctx context.Context, cmd model.TeacherLiveCommand) (*model.Live, error) {
	live, err := s.teacherCommand(ctx, cmd, model.Live.PreviousPosition)
	if err == nil && live.Teacher.Control.CurrentPosition < 0 {
		s.logger.Warn("live position went below zero", "live_key", live.Key, "position", live.Teacher.Control.CurrentPosition)
	}
	return live, err
}

func (s *LiveService) EndLive(ctx context.Context, cmd model.TeacherLiveCommand) (*model.Live, error) {
	return s.teacherCommand(ctx, cmd, model.Live.EndLive)
}

func (s *LiveService) teacherCommand(ctx context.Context, cmd model.TeacherLiveCommand, step func(model.Live, time.Time) (model.Live, error)) (*model.Live, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireOwner(cmd.Token, cmd.TeacherLogin, cmd.TeacherCode, cmd.LiveKey); err != nil {
		return nil, err
	}
	return s.mutate(ctx, cmd.LiveKey, step)
}

// AddPupilToLobby joins the pupil named by the token's owner
func (s *LiveService) AddPupilToLobby(ctx context.Context, cmd model.AddPupilCommand) (*model.Live, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireRole(cmd.Token, cmd.PupilLogin, cmd.PupilCode, model.RolePupil); err != nil {
		return nil, err
	}
	return s.mutate(ctx, cmd.LiveKey, func(l model.Live, now time.Time) (model.Live, error) {
		return l.AddPupilToLobby(cmd.PupilLogin, cmd.PupilCode, now)
	})
}

// RemovePupilFromLobby lets the owning teacher remove a pupil
func (s *LiveService) RemovePupilFromLobby(ctx context.Context, cmd model.RemovePupilCommand) (*model.Live, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireOwner(cmd.Token, cmd.TeacherLogin, cmd.TeacherCode, cmd.LiveKey); err != nil {
		return nil, err
	}
	return s.mutate(ctx, cmd.LiveKey, func(l model.Live, now time.Time) (model.Live, error) {
		return l.RemovePupilFromLobby(cmd.PupilLogin, cmd.PupilCode, now)
	})
}

// SubmitAnswer records a pupil's answer to the current item. Answers that
// land where no answerable item is are dropped with a warning.
func (s *LiveService) SubmitAnswer(ctx context.Context, cmd model.SubmitAnswerCommand) (*model.Live, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireRole(cmd.Token, cmd.PupilLogin, cmd.PupilCode, model.RolePupil); err != nil {
		return nil, err
	}
	// set by the transition, which reruns on every compare-and-set retry
	var ignored error
	live, err := s.mutate(ctx, cmd.LiveKey, func(l model.Live, now time.Time) (model.Live, error) {
		next, err := l.SubmitAnswer(cmd.PupilLogin, cmd.PupilCode, cmd.AnswerValues, now)
		ignored = nil
		if model.KindOf(err) == model.KindInternalState {
			ignored = err
			return l, nil
		}
		return next, err
	})
	if err == nil && ignored != nil {
		s.logger.Warn("answer ignored",
			"live_key", live.Key,
			"pupil", model.ParticipantKey(cmd.PupilLogin, cmd.PupilCode),
			"position", live.Teacher.Control.CurrentPosition,
			"error", ignored)
	}
	return live, err
}

// GetLive returns the current snapshot to any authenticated caller
func (s *LiveService) GetLive(ctx context.Context, token, key string) (*model.Live, error) {
	if err := requireText("liveKey", key); err != nil {
		return nil, err
	}
	if _, err := s.auth.ValidateToken(token); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, key)
}

// ListLives returns the lives the calling teacher has opened
func (s *LiveService) ListLives(ctx context.Context, token string) ([]*model.Live, error) {
	claims, err := s.auth.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if err := requireTeacher(claims); err != nil {
		return nil, err
	}
	lives, err := s.store.ListByTeacher(ctx, claims.Login, claims.Code)
	if err != nil {
		return nil, err
	}
	if lives == nil {
		lives = []*model.Live{}
	}
	return lives, nil
}

func (s *LiveService) mutate(ctx context.Context, key string, step func(model.Live, time.Time) (model.Live, error)) (*model.Live, error) {
	live, err := s.store.Mutate(ctx, key, func(l model.Live) (model.Live, error) {
		return step(l, s.now())
	})
	if err != nil {
		if kind := model.KindOf(err); kind == model.KindTransientStore || kind == model.KindRaceLost {
			s.logger.Error("live mutation failed", "live_key", key, "error", err)
		}
		return nil, err
	}
	return live, nil
}

func (s *LiveService) requireRole(token, login, code string, role model.Role) error {
	claims, err := s.auth.CheckCredentials(token, login, code)
	if err != nil {
		return err
	}
	if claims.Role != role {
		return model.Unauthorized("%s is not a %s", model.ParticipantKey(login, code), role)
	}
	return nil
}

// requireOwner checks the token and that the live key was minted for this
// teacher, before anything touches the cache.
func (s *LiveService) requireOwner(token, login, code, liveKey string) error {
	if err := s.requireRole(token, login, code, model.RoleTeacher); err != nil {
		return err
	}
	if !model.OwnedBy(liveKey, login, code) {
		return model.Unauthorized("live %s belongs to another teacher", liveKey)
	}
	return nil
}
