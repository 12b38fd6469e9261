package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"quizlive/internal/model"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	fieldVersion = "version"
	fieldData    = "data"
)

// LiveCache holds open lives in Redis. Each live is a hash with the JSON
// snapshot and a version stamp that every write increments.
type LiveCache interface {
	Create(ctx context.Context, live *model.Live) error
	Get(ctx context.Context, key string) (*model.Live, error)
	// Update applies fn to the stored snapshot with optimistic locking and
	// returns the written snapshot.
	Update(ctx context.Context, key string, fn model.Transition) (*model.Live, error)
	Delete(ctx context.Context, key string) error
}

type liveCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxRetries int
	// beforeWrite runs between the read and the MULTI/EXEC of an update.
	beforeWrite func(key string)
}

// NewLiveCache creates a live cache; lives expire after ttl without writes.
func NewLiveCache(client *redis.Client, ttl time.Duration, maxRetries int) LiveCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &liveCache{
		client:     client,
		ttl:        ttl,
		maxRetries: maxRetries,
	}
}

func (c *liveCache) key(liveKey string) string {
	return fmt.Sprintf("live:%s", liveKey)
}

func (c *liveCache) Create(ctx context.Context, live *model.Live) error {
	data, err := json.Marshal(live)
	if err != nil {
		return err
	}
	k := c.key(live.Key)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, k).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return model.InvalidField("key", "is already in use")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldVersion, 1, fieldData, data)
			pipe.Expire(ctx, k, c.ttl)
			return nil
		})
		return err
	}, k)
	if err != nil {
		return storeError(err, "create live "+live.Key)
	}
	live.Version = 1
	return nil
}

func (c *liveCache) Get(ctx context.Context, key string) (*model.Live, error) {
	live, err := readLive(ctx, c.client, c.key(key))
	if err != nil {
		return nil, storeError(err, "get live "+key)
	}
	return live, nil
}

func (c *liveCache) Update(ctx context.Context, key string, fn model.Transition) (*model.Live, error) {
	k := c.key(key)
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		var updated *model.Live
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := readLive(ctx, tx, k)
			if err != nil {
				return err
			}
			if current == nil {
				return model.NotFound("live %s not found", key)
			}
			next, err := fn(*current)
			if err != nil {
				return err
			}
			next.Version = current.Version + 1
			data, err := json.Marshal(next)
			if err != nil {
				return err
			}
			if c.beforeWrite != nil {
				c.beforeWrite(key)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, k, fieldVersion, next.Version, fieldData, data)
				pipe.Expire(ctx, k, c.ttl)
				return nil
			})
			if err != nil {
				return err
			}
			updated = &next
			return nil
		}, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, storeError(err, "update live "+key)
		}
		return updated, nil
	}
	return nil, &model.Error{
		Kind:    model.KindRaceLost,
		Message: fmt.Sprintf("live %s changed concurrently %d times", key, c.maxRetries),
	}
}

func (c *liveCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return storeError(err, "delete live "+key)
	}
	return nil
}

type hashReader interface {
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
}

// readLive returns nil, nil when the hash does not exist.
func readLive(ctx context.Context, r hashReader, k string) (*model.Live, error) {
	vals, err := r.HMGet(ctx, k, fieldVersion, fieldData).Result()
	if err != nil {
		return nil, err
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, nil
	}
	var live model.Live
	if err := json.Unmarshal([]byte(raw), &live); err != nil {
		return nil, errors.Wrapf(err, "decode %s", k)
	}
	if v, ok := vals[0].(string); ok {
		live.Version, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "version of %s", k)
		}
	}
	return &live, nil
}

// storeError keeps domain errors and marks everything else as a retryable
// store failure.
func storeError(err error, op string) error {
	if model.KindOf(err) != "" {
		return err
	}
	return model.TransientStore(op, errors.WithStack(err))
}
