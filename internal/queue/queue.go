package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job is one outbound API call plus diagnostic tags.
type Job struct {
	ID          string            `json:"id"`
	Payload     json.RawMessage   `json:"payload"`
	Meta        map[string]string `json:"meta,omitempty"`
	Attempts    int               `json:"attempts"`
	MaxAttempts int               `json:"maxAttempts"`
	LastError   string            `json:"lastError,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	FinishedAt  *time.Time        `json:"finishedAt,omitempty"`
}

type Options struct {
	Name          string
	MaxAttempts   int
	BackoffBase   time.Duration
	KeepCompleted int64
	KeepFailed    int64
}

// Stats is a point-in-time view of queue depth.
type Stats struct {
	Waiting   int64 `json:"waiting"`
	Delayed   int64 `json:"delayed"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// reserveScript promotes due delayed jobs, pops the next waiting job, marks it
// active and counts the attempt. It returns {job, attempts}.
var reserveScript = redis.NewScript(`
local wait = KEYS[1]
local delayed = KEYS[2]
local active = KEYS[3]
local jobs = KEYS[4]
local attempts = KEYS[5]
local now = tonumber(ARGV[1])

local due = redis.call('ZRANGEBYSCORE', delayed, '-inf', now, 'LIMIT', 0, 100)
for _, id in ipairs(due) do
    redis.call('ZREM', delayed, id)
    redis.call('LPUSH', wait, id)
end

while true do
    local id = redis.call('RPOP', wait)
    if not id then
        return false
    end
    local job = redis.call('HGET', jobs, id)
    if job then
        redis.call('ZADD', active, now, id)
        local n = redis.call('HINCRBY', attempts, id, 1)
        return {job, n}
    end
end
`)

// recoverScript returns jobs whose worker vanished to the front of the wait list.
var recoverScript = redis.NewScript(`
local active = KEYS[1]
local wait = KEYS[2]
local cutoff = tonumber(ARGV[1])

local ids = redis.call('ZRANGEBYSCORE', active, '-inf', cutoff)
for _, id in ipairs(ids) do
    redis.call('ZREM', active, id)
    redis.call('RPUSH', wait, id)
end
return #ids
`)

// Queue is a durable Redis-backed work queue with bounded retries.
type Queue struct {
	client *redis.Client
	opts   Options
	now    func() time.Time
}

func New(client *redis.Client, opts Options) *Queue {
	if opts.Name == "" {
		opts.Name = "outbound"
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 2 * time.Second
	}
	if opts.KeepCompleted <= 0 {
		opts.KeepCompleted = 1000
	}
	if opts.KeepFailed <= 0 {
		opts.KeepFailed = 5000
	}
	return &Queue{client: client, opts: opts, now: time.Now}
}

func (q *Queue) key(part string) string {
	return fmt.Sprintf("queue:%s:%s", q.opts.Name, part)
}

// Enqueue returns once the job is durably stored, not once it is delivered.
func (q *Queue) Enqueue(ctx context.Context, payload json.RawMessage, meta map[string]string) (*Job, error) {
	job := &Job{
		ID:          uuid.NewString(),
		Payload:     payload,
		Meta:        meta,
		MaxAttempts: q.opts.MaxAttempts,
		CreatedAt:   q.now(),
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.key("jobs"), job.ID, raw)
		pipe.LPush(ctx, q.key("wait"), job.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// Reserve claims the next ready job, or returns nil when none is ready.
func (q *Queue) Reserve(ctx context.Context) (*Job, error) {
	now := q.now().UnixMilli()
	res, err := reserveScript.Run(ctx, q.client,
		[]string{q.key("wait"), q.key("delayed"), q.key("active"), q.key("jobs"), q.key("attempts")},
		now,
	).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reserve job: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("reserve job: unexpected reply of %d values", len(res))
	}
	raw, _ := res[0].(string)
	attempts, _ := res[1].(int64)

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	job.Attempts = int(attempts)
	return &job, nil
}

// Complete records success and prunes completed history.
func (q *Queue) Complete(ctx context.Context, job *Job) error {
	finished := q.now()
	job.FinishedAt = &finished
	return q.finish(ctx, job, "completed", q.opts.KeepCompleted)
}

// Fail schedules a retry with exponential backoff, or dead-letters the job once
// its attempt budget is spent. It reports whether the job was dead-lettered.
func (q *Queue) Fail(ctx context.Context, job *Job, cause error) (deadLettered bool, err error) {
	if cause != nil {
		job.LastError = cause.Error()
	}

	if job.Attempts >= job.MaxAttempts {
		finished := q.now()
		job.FinishedAt = &finished
		return true, q.finish(ctx, job, "failed", q.opts.KeepFailed)
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("marshal job: %w", err)
	}
	readyAt := q.now().Add(q.Backoff(job.Attempts)).UnixMilli()

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.key("active"), job.ID)
		pipe.HSet(ctx, q.key("jobs"), job.ID, raw)
		pipe.ZAdd(ctx, q.key("delayed"), redis.Z{Score: float64(readyAt), Member: job.ID})
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("schedule retry: %w", err)
	}
	return false, nil
}

// Backoff is the delay after the given failed attempt: base, 2*base, 4*base...
func (q *Queue) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(q.opts.BackoffBase) * math.Pow(2, float64(attempt-1)))
}

func (q *Queue) finish(ctx context.Context, job *Job, list string, keep int64) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.key("active"), job.ID)
		pipe.HDel(ctx, q.key("jobs"), job.ID)
		pipe.HDel(ctx, q.key("attempts"), job.ID)
		pipe.LPush(ctx, q.key(list), raw)
		pipe.LTrim(ctx, q.key(list), 0, keep-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// RecoverStalled requeues jobs that have been active longer than olderThan.
func (q *Queue) RecoverStalled(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := q.now().Add(-olderThan).UnixMilli()
	n, err := recoverScript.Run(ctx, q.client, []string{q.key("active"), q.key("wait")}, cutoff).Int64()
	if err != nil {
		return 0, fmt.Errorf("recover stalled jobs: %w", err)
	}
	return n, nil
}

func (q *Queue) Stats(ctx context.Context) (*Stats, error) {
	pipe := q.client.Pipeline()
	waiting := pipe.LLen(ctx, q.key("wait"))
	delayed := pipe.ZCard(ctx, q.key("delayed"))
	active := pipe.ZCard(ctx, q.key("active"))
	completed := pipe.LLen(ctx, q.key("completed"))
	failed := pipe.LLen(ctx, q.key("failed"))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	return &Stats{
		Waiting:   waiting.Val(),
		Delayed:   delayed.Val(),
		Active:    active.Val(),
		Completed: completed.Val(),
		Failed:    failed.Val(),
	}, nil
}

// DeadLetters lists the most recently dead-lettered jobs.
func (q *Queue) DeadLetters(ctx context.Context, limit int64) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	raws, err := q.client.LRange(ctx, q.key("failed"), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}

	jobs := make([]Job, 0, len(raws))
	for _, raw := range raws {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
