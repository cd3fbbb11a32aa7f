package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper is anything with expired state to reap; the session manager
// implements it.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type CleanupJob struct {
	sessions Sweeper
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(sessions Sweeper, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		interval: interval,
		done:     make(chan struct{}),
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

	count, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to cleanup sessions")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("cleaned up expired sessions")
	}
}
