// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Job is one scheduled action.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Schedule runs job every Interval until ctx is cancelled. When immediate is
// set the job also runs once at start. Failures are logged and the schedule
// continues. A non-positive Interval is rejected before anything runs.
func Schedule(ctx context.Context, job Job, immediate bool, logger zerolog.Logger) error {
	if job.Interval <= 0 {
		return fmt.Errorf("schedule %s: interval must be positive, got %s", job.Name, job.Interval)
	}

	log := logger.With().Str("job", job.Name).Logger()
	log.Info().Dur("interval", job.Interval).Msg("schedule starting")

	if immediate {
		runJob(ctx, job, log)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("schedule stopping")
			return ctx.Err()
		case <-ticker.C:
			runJob(ctx, job, log)
		}
	}
}

func runJob(ctx context.Context, job Job, log zerolog.Logger) {
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
		return
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("scheduled run done")
}

// TokenJob renews the access token every interval.
func (s *Service) TokenJob(interval time.Duration) Job {
	return Job{
		Name:     "token-refresh",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := s.RefreshToken(ctx)
			return err
		},
	}
}

// CacheJob checks the cache every check interval and rebuilds it once it is
// older than maxAge.
func (s *Service) CacheJob(check, maxAge time.Duration) Job {
	return Job{
		Name:     "cache-refresh",
		Interval: check,
		Run: func(ctx context.Context) error {
			_, err := s.RefreshIfStale(ctx, maxAge)
			return err
		},
	}
}
