package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Handler processes reserved jobs and observes their final outcome.
type Handler interface {
	Process(ctx context.Context, job *Job) error
	Completed(ctx context.Context, job *Job)
	DeadLettered(ctx context.Context, job *Job, cause error)
}

type WorkerOptions struct {
	Concurrency    int
	PollInterval   time.Duration
	StalledTimeout time.Duration
}

// Worker drains a queue with a fixed number of goroutines.
type Worker struct {
	queue   *Queue
	handler Handler
	opts    WorkerOptions
}

func NewWorker(q *Queue, h Handler, opts WorkerOptions) *Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.StalledTimeout <= 0 {
		opts.StalledTimeout = 2 * time.Minute
	}
	return &Worker{queue: q, handler: h, opts: opts}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().
		Str("queue", w.queue.opts.Name).
		Int("concurrency", w.opts.Concurrency).
		Msg("queue worker started")

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.opts.Concurrency; i++ {
		g.Go(func() error {
			w.loop(gctx)
			return nil
		})
	}
	g.Go(func() error {
		w.recoverLoop(gctx)
		return nil
	})

	err := g.Wait()
	log.Info().Str("queue", w.queue.opts.Name).Msg("queue worker stopped")
	return err
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		processed, err := w.ProcessNext(ctx)
		if err != nil {
			log.Error().Err(err).Str("queue", w.queue.opts.Name).Msg("queue poll failed")
		}
		if processed {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.opts.PollInterval):
		}
	}
}

// ProcessNext runs at most one job. It reports whether a job was reserved.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.queue.Reserve(ctx)
	if err != nil || job == nil {
		return false, err
	}

	// Finish bookkeeping even if shutdown begins mid-send.
	bookkeeping := context.WithoutCancel(ctx)

	start := time.Now()
	procErr := w.handler.Process(ctx, job)
	jobDurationHist.WithLabelValues(w.queue.opts.Name).Observe(time.Since(start).Seconds())

	if procErr == nil {
		jobsProcessedCounter.WithLabelValues(w.queue.opts.Name, "completed").Inc()
		if err := w.queue.Complete(bookkeeping, job); err != nil {
			return true, err
		}
		w.handler.Completed(bookkeeping, job)
		return true, nil
	}

	dead, err := w.queue.Fail(bookkeeping, job, procErr)
	if err != nil {
		return true, err
	}

	logger := log.With().
		Str("jobId", job.ID).
		Int("attempt", job.Attempts).
		Int("maxAttempts", job.MaxAttempts).
		Err(procErr).
		Logger()

	if dead {
		jobsProcessedCounter.WithLabelValues(w.queue.opts.Name, "dead_lettered").Inc()
		logger.Error().Msg("job dead-lettered after exhausting attempts")
		w.handler.DeadLettered(bookkeeping, job, procErr)
		return true, nil
	}

	jobsProcessedCounter.WithLabelValues(w.queue.opts.Name, "retried").Inc()
	logger.Warn().Dur("backoff", w.queue.Backoff(job.Attempts)).Msg("job failed, retry scheduled")
	return true, nil
}

func (w *Worker) recoverLoop(ctx context.Context) {
	ticker := time.NewTicker(w.opts.StalledTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.queue.RecoverStalled(ctx, w.opts.StalledTimeout)
			if err != nil {
				log.Error().Err(err).Msg("stalled job recovery failed")
				continue
			}
			if n > 0 {
				stalledRecoveredCounter.WithLabelValues(w.queue.opts.Name).Add(float64(n))
				log.Warn().Int64("count", n).Msg("requeued stalled jobs")
			}
		}
	}
}
