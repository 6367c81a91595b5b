package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/barrens-blog/barrens/internal/logger"
)

const purgeTimeout = 30 * time.Second

// Purger removes denylist entries whose tokens have already expired
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StartRevocationPurge schedules a periodic denylist purge. The schedule is a standard 5-field
// cron expression or a descriptor such as "@every 1h". Callers stop the returned cron on shutdown.
func StartRevocationPurge(schedule string, purger Purger, zlog zerolog.Logger) (*cron.Cron, error) {
	log := logger.Component(zlog, "revocation_purge")

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid revocation purge schedule %q: %w", schedule, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { purgeRevocations(purger, log) }); err != nil {
		return nil, fmt.Errorf("failed to schedule revocation purge: %w", err)
	}
	c.Start()

	log.Info().Str("schedule", schedule).Msg("Revocation purge scheduled")
	return c, nil
}

func purgeRevocations(purger Purger, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	purged, err := purger.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired revocations")
		return
	}

	if purged > 0 {
		log.Info().Int64("purged", purged).Msg("Purged expired revocations")
		return
	}
	log.Debug().Msg("No expired revocations to purge")
}
