package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type sessionSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type deliveryLogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob periodically drops expired in-memory sessions and prunes old
// delivery log rows.
type CleanupJob struct {
	sessions  sessionSweeper
	logs      deliveryLogPruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	done      chan struct{}
}

// NewCleanupJob builds the job. sessions is nil when sessions live in Redis,
// which expires them itself.
func NewCleanupJob(sessions sessionSweeper, logs deliveryLogPruner, retention, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		sessions:  sessions,
		logs:      logs,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if j.sessions != nil {
		j.runCleanup(ctx, "sessions", j.sessions.Sweep)
	}
	if j.logs != nil {
		cutoff := j.now().Add(-j.retention)
		j.runCleanup(ctx, "delivery logs", func(ctx context.Context) (int64, error) {
			return j.logs.DeleteOlderThan(ctx, cutoff)
		})
	}
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
