// Package testevents drives a running service with generated match events
// and checks that they read back as written.
package testevents

import "time"

// Config holds configuration for a seed run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Matches        int           // Number of matches to generate
	EventsPerMatch int           // Events generated per match
	Workers        int           // Number of concurrent submitters
	Timeout        time.Duration // HTTP request timeout
	Seed           uint64        // Generator seed; zero picks one from the clock
	Verbose        bool          // Log every request
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated  int
	EventsSubmitted  int
	EventsSuccessful int
	EventsFailed     int
	EventsVerified   int
	MatchesVerified  int
	StartTime        time.Time
	Duration         time.Duration
}
