package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"quizlive/internal/cache"
	"quizlive/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLiveRepo struct {
	mu    sync.Mutex
	lives map[string]model.Live
	fail  error
}

func newFakeLiveRepo() *fakeLiveRepo {
	return &fakeLiveRepo{lives: map[string]model.Live{}}
}

func (r *fakeLiveRepo) Save(_ context.Context, live *model.Live) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.lives[live.Key] = *live
	return nil
}

func (r *fakeLiveRepo) Get(_ context.Context, key string) (*model.Live, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	live, ok := r.lives[key]
	if !ok {
		return nil, nil
	}
	return &live, nil
}

func (r *fakeLiveRepo) ListByTeacher(_ context.Context, login, code string) ([]*model.Live, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Live
	for _, live := range r.lives {
		live := live
		if live.Teacher.Login == login && live.Teacher.Code == code {
			out = append(out, &live)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = model.ParticipantKey(user.Login, user.Code)
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, login, code string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[model.ParticipantKey(login, code)]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, login, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[model.ParticipantKey(login, code)]
	return ok, nil
}

type fakeQuizRepo struct {
	mu      sync.Mutex
	quizzes map[string]model.Quiz
	reads   int
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: map[string]model.Quiz{}}
}

func (r *fakeQuizRepo) Create(_ context.Context, quiz *model.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.Key] = *quiz
	return nil
}

func (r *fakeQuizRepo) GetByKey(_ context.Context, key string) (*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	quiz, ok := r.quizzes[key]
	if !ok {
		return nil, nil
	}
	return &quiz, nil
}

func (r *fakeQuizRepo) GetByTeacher(_ context.Context, login, code string) ([]*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Quiz
	for _, quiz := range r.quizzes {
		quiz := quiz
		if quiz.Login == login && quiz.Code == code {
			out = append(out, &quiz)
		}
	}
	return out, nil
}

func (r *fakeQuizRepo) Update(_ context.Context, quiz *model.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.Key] = *quiz
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []model.Live
}

func (p *recordingPublisher) Publish(live *model.Live) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, *live)
}

func (p *recordingPublisher) last() model.Live {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshots[len(p.snapshots)-1]
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
}

func (n *recordingNotifier) LiveCompleted(_ context.Context, live *model.Live) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, live.Key)
	return nil
}

// slowCache stretches the window between read and write of every update.
type slowCache struct {
	cache.LiveCache
	delay time.Duration
}

func (c slowCache) Update(ctx context.Context, key string, fn model.Transition) (*model.Live, error) {
	return c.LiveCache.Update(ctx, key, func(l model.Live) (model.Live, error) {
		time.Sleep(c.delay)
		return fn(l)
	})
}

// replayingCache runs every transition twice per write, the way a lost
// compare-and-set round does.
type replayingCache struct {
	cache.LiveCache
}

func (c replayingCache) Update(ctx context.Context, key string, fn model.Transition) (*model.Live, error) {
	return c.LiveCache.Update(ctx, key, func(l model.Live) (model.Live, error) {
		if _, err := fn(l); err != nil {
			return l, err
		}
		return fn(l)
	})
}

func newLiveCache(t *testing.T, mr *miniredis.Miniredis) cache.LiveCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewLiveCache(client, time.Hour, 8)
}

func quizFixture() model.Quiz {
	return model.Quiz{
		Key:   "quiz-1",
		Login: "marie",
		Code:  "1234",
		Name:  "Capitals",
		Items: model.QuizItems{
			model.MultipleChoice{
				Scored:   model.Scored{Position: 1, ExpectedAnswers: []string{"A"}, TimerSeconds: 30, Reward: 10},
				Question: "Capital of France?",
				Options:  []string{"A", "B"},
			},
			model.TitleSlide{Position: 2, Title: "Break"},
		},
	}
}

func openLive(t *testing.T, store *LiveStore, key string) model.Live {
	t.Helper()
	live, err := model.NewLive(key, "marie", "1234", quizFixture(), testNow)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), &live))
	return live
}
