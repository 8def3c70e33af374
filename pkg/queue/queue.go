package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
)

// Redis key layout for the auto-record pipeline.
const (
	mainQueueKey     = "crawl:auto_record:queue"
	processingSetKey = "crawl:auto_record:processing"
	failedSetKey     = "crawl:auto_record:failed"
	failureKeyFmt    = "crawl:auto_record:failures:"

	// failureCounterTTL bounds how long a per-id retry counter survives.
	// After it lapses a re-enqueued id starts with a clean budget.
	failureCounterTTL = time.Hour
)

// Stats is a point-in-time size snapshot of the pipeline.
type Stats struct {
	Queue      int64 `json:"queue"`
	Processing int64 `json:"processing"`
	Failed     int64 `json:"failed"`
}

// Queue is the Redis-backed FIFO feeding the auto-record consumer: a main
// list of result ids, a processing set for per-pass duplicate suppression,
// a failed set for ids that exhausted retries, and per-id failure counters.
type Queue interface {
	Enqueue(ctx context.Context, id string) error
	Dequeue(ctx context.Context) (string, bool, error)
	MarkProcessing(ctx context.Context, id string) error
	UnmarkProcessing(ctx context.Context, id string) error
	IsProcessing(ctx context.Context, id string) (bool, error)
	IncrementFailure(ctx context.Context, id string) (int, error)
	ClearFailure(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
	RetryFailed(ctx context.Context, limit int) (int, error)
	Stats(ctx context.Context) (*Stats, error)
}

type redisQueue struct {
	client *redis.Client
}

// NewRedisQueue builds a Queue over the given client.
func NewRedisQueue(client *redis.Client) Queue {
	return &redisQueue{client: client}
}

func queueErr(op string, err error) error {
	return errors.NewError().
		WithCode(errors.CodeQueueError).
		WithMessagef("auto-record queue %s failed", op).
		WithError(err)
}

// Enqueue appends the result id to the tail of the main queue.
func (q *redisQueue) Enqueue(ctx context.Context, id string) error {
	if err := q.client.RPush(ctx, mainQueueKey, id).Err(); err != nil {
		return queueErr("enqueue", err)
	}
	return nil
}

// Dequeue pops the head of the main queue. The second return is false when
// the queue is empty.
func (q *redisQueue) Dequeue(ctx context.Context) (string, bool, error) {
	id, err := q.client.LPop(ctx, mainQueueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, queueErr("dequeue", err)
	}
	return id, true, nil
}

func (q *redisQueue) MarkProcessing(ctx context.Context, id string) error {
	if err := q.client.SAdd(ctx, processingSetKey, id).Err(); err != nil {
		return queueErr("mark_processing", err)
	}
	return nil
}

func (q *redisQueue) UnmarkProcessing(ctx context.Context, id string) error {
	if err := q.client.SRem(ctx, processingSetKey, id).Err(); err != nil {
		return queueErr("unmark_processing", err)
	}
	return nil
}

func (q *redisQueue) IsProcessing(ctx context.Context, id string) (bool, error) {
	member, err := q.client.SIsMember(ctx, processingSetKey, id).Result()
	if err != nil {
		return false, queueErr("is_processing", err)
	}
	return member, nil
}

// IncrementFailure bumps the per-id failure counter and returns the new
// count. The counter TTL is refreshed on every bump.
func (q *redisQueue) IncrementFailure(ctx context.Context, id string) (int, error) {
	key := failureKeyFmt + id
	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, queueErr("increment_failure", err)
	}
	if err := q.client.Expire(ctx, key, failureCounterTTL).Err(); err != nil {
		return int(count), queueErr("increment_failure", err)
	}
	return int(count), nil
}

func (q *redisQueue) ClearFailure(ctx context.Context, id string) error {
	if err := q.client.Del(ctx, failureKeyFmt+id).Err(); err != nil {
		return queueErr("clear_failure", err)
	}
	return nil
}

// MarkFailed moves the id into the failed set and drops its counter, so a
// later RetryFailed starts it with a fresh budget.
func (q *redisQueue) MarkFailed(ctx context.Context, id string) error {
	pipe := q.client.TxPipeline()
	pipe.SAdd(ctx, failedSetKey, id)
	pipe.Del(ctx, failureKeyFmt+id)
	if _, err := pipe.Exec(ctx); err != nil {
		return queueErr("mark_failed", err)
	}
	return nil
}

// RetryFailed moves up to limit ids from the failed set back onto the main
// queue and returns how many it moved.
func (q *redisQueue) RetryFailed(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}
	moved := 0
	for moved < limit {
		id, err := q.client.SPop(ctx, failedSetKey).Result()
		if err != nil {
			if err == redis.Nil {
				break
			}
			return moved, queueErr("retry_failed", err)
		}
		if err := q.client.RPush(ctx, mainQueueKey, id).Err(); err != nil {
			return moved, queueErr("retry_failed", err)
		}
		moved++
	}
	return moved, nil
}

func (q *redisQueue) Stats(ctx context.Context) (*Stats, error) {
	pipe := q.client.Pipeline()
	queueLen := pipe.LLen(ctx, mainQueueKey)
	processing := pipe.SCard(ctx, processingSetKey)
	failed := pipe.SCard(ctx, failedSetKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, queueErr("stats", err)
	}
	return &Stats{
		Queue:      queueLen.Val(),
		Processing: processing.Val(),
		Failed:     failed.Val(),
	}, nil
}
