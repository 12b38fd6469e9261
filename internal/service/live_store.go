package service

import (
	"context"
	"log/slog"
	"quizlive/internal/cache"
	"quizlive/internal/model"
	"quizlive/internal/repository"
	"sync"
)

// LiveStore serializes mutations per live key. Inside one process every key
// is owned by a worker goroutine that applies queued transitions in arrival
// order; across processes the cache's compare-and-set settles conflicts.
type LiveStore struct {
	cache     cache.LiveCache
	repo      repository.LiveRepo
	publisher LivePublisher
	notifier  CompletionNotifier
	logger    *slog.Logger

	mu      sync.Mutex
	workers map[string]*liveWorker
}

type liveWorker struct {
	key     string
	jobs    chan liveJob
	pending int // callers that acquired the worker and have not been served
}

type liveJob struct {
	ctx    context.Context
	fn     model.Transition
	result chan liveResult
}

type liveResult struct {
	live *model.Live
	err  error
}

// NewLiveStore creates a new live store
func NewLiveStore(cache cache.LiveCache, repo repository.LiveRepo, logger *slog.Logger) *LiveStore {
	return &LiveStore{
		cache:     cache,
		repo:      repo,
		publisher: nopPublisher{},
		notifier:  nopNotifier{},
		logger:    logger,
		workers:   make(map[string]*liveWorker),
	}
}

// SetPublisher sets the stream publisher notified after every mutation
func (s *LiveStore) SetPublisher(p LivePublisher) {
	s.publisher = p
}

// SetNotifier sets the receiver of completion events
func (s *LiveStore) SetNotifier(n CompletionNotifier) {
	s.notifier = n
}

// Create writes a fresh live to the cache and its initial durable record.
func (s *LiveStore) Create(ctx context.Context, live *model.Live) error {
	if err := s.cache.Create(ctx, live); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, live); err != nil {
		if delErr := s.cache.Delete(ctx, live.Key); delErr != nil {
			s.logger.Warn("failed to drop live after durable write failed", "live_key", live.Key, "error", delErr)
		}
		return model.TransientStore("save live "+live.Key, err)
	}
	s.publisher.Publish(live)
	return nil
}

// Mutate queues fn on the worker of key and waits for the written snapshot.
func (s *LiveStore) Mutate(ctx context.Context, key string, fn model.Transition) (*model.Live, error) {
	job := liveJob{ctx: ctx, fn: fn, result: make(chan liveResult, 1)}
	w := s.acquire(key)
	select {
	case w.jobs <- job:
	case <-ctx.Done():
		s.release(w)
		return nil, ctx.Err()
	}

	select {
	case res := <-job.result:
		return res.live, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *LiveStore) acquire(key string) *liveWorker {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workers[key]
	if !ok {
		w = &liveWorker{key: key, jobs: make(chan liveJob, 64)}
		s.workers[key] = w
		go s.run(w)
	}
	w.pending++
	return w
}

// release drops one pending caller; the last one retires the worker.
func (s *LiveStore) release(w *liveWorker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.pending--
	if w.pending == 0 {
		delete(s.workers, w.key)
		close(w.jobs)
	}
}

func (s *LiveStore) run(w *liveWorker) {
	for job := range w.jobs {
		var res liveResult
		if err := job.ctx.Err(); err != nil {
			res.err = err
		} else {
			res.live, res.err = s.apply(job.ctx, w.key, job.fn)
		}
		job.result <- res
		s.release(w)
	}
}

func (s *LiveStore) apply(ctx context.Context, key string, fn model.Transition) (*model.Live, error) {
	live, err := s.cache.Update(ctx, key, fn)
	if model.KindOf(err) == model.KindNotFound {
		return nil, s.flushedOrMissing(ctx, key, err)
	}
	if err != nil {
		return nil, err
	}
	// the transition is committed; a failed flush stays cached and is retried by Get
	if live.IsCompleted() {
		if err := s.Finalize(ctx, live); err != nil {
			s.logger.Warn("completed live left in cache", "live_key", key, "error", err)
		}
	}
	s.publisher.Publish(live)
	return live, nil
}

// flushedOrMissing turns a cache miss on an already flushed live into the
// same error a completed live gives.
func (s *LiveStore) flushedOrMissing(ctx context.Context, key string, notFound error) error {
	durable, err := s.repo.Get(ctx, key)
	if err != nil {
		return model.TransientStore("get live "+key, err)
	}
	if durable != nil && durable.IsCompleted() {
		return model.InvalidField("status", "live "+key+" is already completed")
	}
	return notFound
}

// Finalize moves a completed live to the durable store and evicts it from the cache.
func (s *LiveStore) Finalize(ctx context.Context, live *model.Live) error {
	if err := s.repo.Save(ctx, live); err != nil {
		s.logger.Error("failed to flush completed live", "live_key", live.Key, "error", err)
		return model.TransientStore("flush live "+live.Key, err)
	}
	if err := s.cache.Delete(ctx, live.Key); err != nil {
		// the entry expires with its TTL anyway
		s.logger.Warn("failed to evict completed live", "live_key", live.Key, "error", err)
	}
	if err := s.notifier.LiveCompleted(ctx, live); err != nil {
		s.logger.Warn("failed to announce completed live", "live_key", live.Key, "error", err)
	}
	s.logger.Info("live completed", "live_key", live.Key, "answers", live.Engagement.AnswersCorrect+live.Engagement.AnswersIncorrect+live.Engagement.AnswersUnanswered)
	return nil
}

// Get reads the cached snapshot, falling back to the durable store once a
// live has been flushed.
func (s *LiveStore) Get(ctx context.Context, key string) (*model.Live, error) {
	live, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if live != nil {
		if live.IsCompleted() {
			// an earlier flush failed; try again
			if err := s.Finalize(ctx, live); err != nil {
				s.logger.Warn("completed live still cached", "live_key", key, "error", err)
			} else {
				s.publisher.Publish(live)
			}
		}
		return live, nil
	}

	live, err = s.repo.Get(ctx, key)
	if err != nil {
		return nil, model.TransientStore("get live "+key, err)
	}
	if live == nil {
		return nil, model.NotFound("live %s not found", key)
	}
	return live, nil
}

// ListByTeacher returns the durable records of every live the teacher opened.
func (s *LiveStore) ListByTeacher(ctx context.Context, login, code string) ([]*model.Live, error) {
	lives, err := s.repo.ListByTeacher(ctx, login, code)
	if err != nil {
		return nil, model.TransientStore("list lives", err)
	}
	return lives, nil
}

// active reports how many keys currently have a worker.
func (s *LiveStore) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}
