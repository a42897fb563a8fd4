package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/sportsevents/internal/testevents"
	"github.com/okian/sportsevents/pkg/logger"
)

// Default configuration constants.
const (
	defaultMatches        = 20
	defaultEventsPerMatch = 12
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 10 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		matches = flag.Int("matches", defaultMatches, "Number of matches to generate")
		events  = flag.Int("events", defaultEventsPerMatch, "Events per match")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Uint64("seed", 0, "Generator seed, 0 for a random run")
		verbose = flag.Bool("verbose", false, "Log every request")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	_, err := testevents.Run(ctx, &testevents.Config{
		BaseURL:        *baseURL,
		Matches:        *matches,
		EventsPerMatch: *events,
		Workers:        *workers,
		Timeout:        *timeout,
		Seed:           *seed,
		Verbose:        *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "seed run failed", logger.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}
