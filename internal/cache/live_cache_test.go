package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"quizlive/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

func newClient(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func openLive(t *testing.T) model.Live {
	t.Helper()
	quiz := model.Quiz{
		Key: "quiz-1",
		Items: model.QuizItems{
			model.MultipleChoice{
				Scored:   model.Scored{Position: 1, ExpectedAnswers: []string{"A"}, TimerSeconds: 10, Reward: 1},
				Question: "q",
				Options:  []string{"A", "B"},
			},
		},
	}
	live, err := model.NewLive("Live-k-marie#1234", "marie", "1234", quiz, now)
	require.NoError(t, err)
	live, err = live.NextPosition(now)
	require.NoError(t, err)
	return live
}

func submit(login string) model.Transition {
	return func(l model.Live) (model.Live, error) {
		return l.SubmitAnswer(login, "1", []string{"A"}, now)
	}
}

func TestLiveCacheCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	mr := newRedis(t)
	c := NewLiveCache(newClient(t, mr), time.Hour, 3)
	live := openLive(t)

	require.NoError(t, c.Create(ctx, &live))
	assert.Equal(t, int64(1), live.Version)
	assert.True(t, mr.Exists("live:"+live.Key))
	assert.Equal(t, time.Hour, mr.TTL("live:"+live.Key))

	err := c.Create(ctx, &live)
	assert.ErrorIs(t, err, model.ErrValidation)

	got, err := c.Get(ctx, live.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, live.Key, got.Key)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, 1, got.Teacher.Control.CurrentPosition)

	require.NoError(t, c.Delete(ctx, live.Key))
	got, err = c.Get(ctx, live.Key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLiveCacheUpdate(t *testing.T) {
	ctx := context.Background()
	mr := newRedis(t)
	c := NewLiveCache(newClient(t, mr), time.Hour, 3)
	live := openLive(t)
	require.NoError(t, c.Create(ctx, &live))

	updated, err := c.Update(ctx, live.Key, submit("alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Len(t, updated.Evaluation["alice#1"], 1)

	stored, err := c.Get(ctx, live.Key)
	require.NoError(t, err)
	assert.Equal(t, updated.Evaluation, stored.Evaluation)
	assert.Equal(t, int64(2), stored.Version)
}

func TestLiveCacheUpdateMissing(t *testing.T) {
	c := NewLiveCache(newClient(t, newRedis(t)), time.Hour, 3)
	_, err := c.Update(context.Background(), "Live-nope-x#1", submit("alice"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLiveCacheUpdateKeepsDomainError(t *testing.T) {
	ctx := context.Background()
	c := NewLiveCache(newClient(t, newRedis(t)), time.Hour, 3)
	live := openLive(t)
	require.NoError(t, c.Create(ctx, &live))

	_, err := c.Update(ctx, live.Key, func(l model.Live) (model.Live, error) {
		return l, model.InvalidField("status", "closed")
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	stored, err := c.Get(ctx, live.Key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version, "failed transitions are not written")
}

func TestLiveCacheNoLostUpdateAcrossInstances(t *testing.T) {
	ctx := context.Background()
	mr := newRedis(t)
	live := openLive(t)
	require.NoError(t, NewLiveCache(newClient(t, mr), time.Hour, 8).Create(ctx, &live))

	// two processes share one Redis; both read before either writes
	var ready sync.WaitGroup
	ready.Add(2)
	var once [2]sync.Once
	caches := make([]*liveCache, 2)
	for i := range caches {
		i := i
		caches[i] = NewLiveCache(newClient(t, mr), time.Hour, 8).(*liveCache)
		caches[i].beforeWrite = func(string) {
			once[i].Do(func() {
				ready.Done()
				ready.Wait()
			})
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, login := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(i int, login string) {
			defer wg.Done()
			_, errs[i] = caches[i].Update(ctx, live.Key, submit(login))
		}(i, login)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	stored, err := caches[0].Get(ctx, live.Key)
	require.NoError(t, err)
	assert.Len(t, stored.Evaluation["alice#1"], 1)
	assert.Len(t, stored.Evaluation["bob#1"], 1)
	assert.Equal(t, 2, stored.Engagement.AnswersCorrect)
	assert.Equal(t, int64(3), stored.Version)
}

func TestLiveCacheRaceLost(t *testing.T) {
	ctx := context.Background()
	mr := newRedis(t)
	live := openLive(t)
	other := newClient(t, mr)

	c := NewLiveCache(newClient(t, mr), time.Hour, 3).(*liveCache)
	require.NoError(t, c.Create(ctx, &live))
	attempts := 0
	c.beforeWrite = func(key string) {
		attempts++
		require.NoError(t, other.HIncrBy(ctx, "live:"+key, fieldVersion, 1).Err())
	}

	_, err := c.Update(ctx, live.Key, submit("alice"))
	assert.ErrorIs(t, err, model.ErrRaceLost)
	assert.Equal(t, 3, attempts)
}
