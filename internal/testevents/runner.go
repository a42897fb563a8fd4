package testevents

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/sportsevents/pkg/logger"
)

// Run checks health, generates and submits events, then verifies them.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(stats.StartTime.UnixNano())
	}
	log.Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("eventsPerMatch", cfg.EventsPerMatch),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("seed", seed),
	)

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	events := NewGenerator(seed).Generate(cfg.Matches, cfg.EventsPerMatch)
	stats.EventsGenerated = len(events)

	accepted := Submit(ctx, client, events, cfg.Workers, stats)
	if stats.EventsFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d submissions failed", ErrUnexpectedStatus, stats.EventsFailed, stats.EventsSubmitted)
	}

	if err := Verify(ctx, client, accepted, stats); err != nil {
		return stats, fmt.Errorf("verification failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	logStats(ctx, log, stats)
	return stats, nil
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsSuccessful", stats.EventsSuccessful),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("eventsVerified", stats.EventsVerified),
		logger.Int("matchesVerified", stats.MatchesVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("eventsPerSecond", perSecond),
	)
}
