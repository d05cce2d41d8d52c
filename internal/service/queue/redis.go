package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/iliamunaev/order-fulfillment/internal/model"
)

// deferredKey is the sorted set holding msgpack-encoded jobs, scored by
// due time.
const deferredKey = "order:deferred:queue"

// Redis is a sorted-set job queue. The score is the job's due time in unix
// milliseconds, so delayed jobs stay invisible to Dequeue until they mature.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis at redisURL and verifies it with a ping.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("queue: parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("queue: ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Enqueue adds a job that is immediately due.
func (q *Redis) Enqueue(ctx context.Context, job model.Job) error {
	return q.EnqueueDelayed(ctx, job, 0)
}

// EnqueueDelayed adds a job that becomes due after delay.
func (q *Redis) EnqueueDelayed(ctx context.Context, job model.Job, delay time.Duration) error {
	data, err := msgpack.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: encode job %s: %w", job.ID, err)
	}

	// Unix milliseconds fit a float64 score exactly; nanoseconds would not.
	score := float64(time.Now().Add(delay).UnixMilli())
	if err := q.client.ZAdd(ctx, deferredKey, redis.Z{Score: score, Member: string(data)}).Err(); err != nil {
		return fmt.Errorf("queue: enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// Dequeue removes and returns the oldest due job, or nil when nothing is
// due. Concurrent consumers may race for the same member; the loser sees a
// nil job and polls again.
func (q *Redis) Dequeue(ctx context.Context) (*model.Job, error) {
	now := float64(time.Now().UnixMilli())

	results, err := q.client.ZRangeByScoreWithScores(ctx, deferredKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%f", now),
		Count: 1,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: range: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	member, ok := results[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("queue: unexpected member type %T", results[0].Member)
	}

	removed, err := q.client.ZRem(ctx, deferredKey, member).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: remove: %w", err)
	}
	if removed == 0 {
		return nil, nil
	}

	var job model.Job
	if err := msgpack.Unmarshal([]byte(member), &job); err != nil {
		return nil, fmt.Errorf("queue: decode job: %w", err)
	}
	return &job, nil
}

// Len returns the number of queued jobs, due or not.
func (q *Redis) Len(ctx context.Context) (int64, error) {
	n, err := q.client.ZCard(ctx, deferredKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: card: %w", err)
	}
	return n, nil
}

// Jobs returns a snapshot of all queued jobs in due order. Members that no
// longer decode are skipped.
func (q *Redis) Jobs(ctx context.Context) ([]model.Job, error) {
	results, err := q.client.ZRange(ctx, deferredKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: range all: %w", err)
	}

	jobs := make([]model.Job, 0, len(results))
	for _, member := range results {
		var job model.Job
		if err := msgpack.Unmarshal([]byte(member), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Close closes the underlying Redis client.
func (q *Redis) Close() error {
	return q.client.Close()
}
