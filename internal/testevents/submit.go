package testevents

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/sportsevents/internal/domain/model"
	"github.com/okian/sportsevents/pkg/logger"
)

// Submit posts events with workers goroutines. The returned slice holds the
// events that were accepted, with their assigned ids filled in.
func Submit(ctx context.Context, c *Client, events []model.Event, workers int, stats *Stats) []model.Event {
	if workers < 1 {
		workers = 1
	}
	log := logger.Get()

	var (
		submitted atomic.Int64
		failed    atomic.Int64
		mu        sync.Mutex
		accepted  = make([]model.Event, 0, len(events))
		wg        sync.WaitGroup
	)

	jobs := make(chan model.Event, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				submitted.Add(1)
				id, err := c.LogEvent(ctx, e)
				if err != nil {
					failed.Add(1)
					log.Warn(ctx, "submit failed", logger.String("match_id", e.MatchID), logger.Error(err))
					continue
				}
				e.EventID = id
				log.Debug(ctx, "event submitted", logger.String("event_id", id))

				mu.Lock()
				accepted = append(accepted, e)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, e := range events {
			select {
			case <-ctx.Done():
				return
			case jobs <- e:
			}
		}
	}()
	wg.Wait()

	stats.EventsSubmitted = int(submitted.Load())
	stats.EventsFailed = int(failed.Load())
	stats.EventsSuccessful = len(accepted)
	return accepted
}
