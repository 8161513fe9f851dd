// Package cache keeps presented exams in Redis. Exams are immutable once
// composed, so entries only go stale when a contained question is edited or removed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yigit/institute/internal/app/models"
)

// Lookup is the result of a cache read. Generation is the exam's invalidation
// counter at read time and must be handed back to Set after a miss.
type Lookup struct {
	Items      []models.ExamItem
	Hit        bool
	Generation int64
}

// ExamCache stores the display rows of presented exams
type ExamCache interface {
	Get(ctx context.Context, examID int64) (Lookup, error)
	// Set stores items unless the exam was invalidated after generation was
	// read. It reports whether the entry was written.
	Set(ctx context.Context, examID, generation int64, items []models.ExamItem) (bool, error)
	Invalidate(ctx context.Context, examIDs ...int64) error
}

var errGenerationChanged = errors.New("exam generation changed")

type redisExamCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisExamCache returns an ExamCache backed by client. A ttl of zero keeps
// entries until invalidated. Generation counters never expire.
func NewRedisExamCache(client *redis.Client, ttl time.Duration) ExamCache {
	return &redisExamCache{client: client, ttl: ttl}
}

func itemsKey(examID int64) string {
	return fmt.Sprintf("exam:%d:items", examID)
}

func generationKey(examID int64) string {
	return fmt.Sprintf("exam:%d:gen", examID)
}

func (c *redisExamCache) Get(ctx context.Context, examID int64) (Lookup, error) {
	vals, err := c.client.MGet(ctx, itemsKey(examID), generationKey(examID)).Result()
	if err != nil {
		return Lookup{}, fmt.Errorf("failed to read exam %d from cache: %w", examID, err)
	}

	var lookup Lookup
	if raw, ok := vals[1].(string); ok {
		if lookup.Generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return Lookup{}, fmt.Errorf("invalid cache generation for exam %d: %w", examID, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return lookup, nil
	}
	if err := json.Unmarshal([]byte(raw), &lookup.Items); err != nil {
		return Lookup{}, fmt.Errorf("failed to decode cached exam %d: %w", examID, err)
	}
	lookup.Hit = true
	return lookup, nil
}

func (c *redisExamCache) Set(ctx context.Context, examID, generation int64, items []models.ExamItem) (bool, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("failed to encode exam %d: %w", examID, err)
	}

	genKey := generationKey(examID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errGenerationChanged
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, itemsKey(examID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errGenerationChanged), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("failed to cache exam %d: %w", examID, err)
	}
}

// Invalidate drops the cached rows and bumps the generation of every exam in
// one transaction, so a reader that loaded rows before the bump cannot store them.
func (c *redisExamCache) Invalidate(ctx context.Context, examIDs ...int64) error {
	if len(examIDs) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range examIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Del(ctx, itemsKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate %d cached exams: %w", len(examIDs), err)
	}
	return nil
}

type noopExamCache struct{}

// NewNoopExamCache returns an ExamCache that never stores anything
func NewNoopExamCache() ExamCache {
	return noopExamCache{}
}

func (noopExamCache) Get(context.Context, int64) (Lookup, error) { return Lookup{}, nil }

func (noopExamCache) Set(context.Context, int64, int64, []models.ExamItem) (bool, error) {
	return false, nil
}

func (noopExamCache) Invalidate(context.Context, ...int64) error { return nil }
