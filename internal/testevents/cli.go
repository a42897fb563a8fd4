package testevents

import "os"

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Sports Events Seed Tool
=======================

Generates goal and card events for a number of matches, submits them
concurrently to a running service and verifies they read back unchanged.

Usage:
  go run ./cmd/seed-events [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -matches int
        Number of matches to generate (default 20)
  -events int
        Events per match (default 12)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Generator seed, 0 for a random run (default 0)
  -verbose
        Log every request
  -help
        Show this help message

Examples:
  go run ./cmd/seed-events -matches 100 -events 20 -workers 16
  go run ./cmd/seed-events -url http://localhost:8080 -seed 42
`)
}
