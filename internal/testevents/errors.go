package testevents

import "errors"

// Sentinel kinds for seed run failures.
var (
	ErrUnexpectedStatus = errors.New("unexpected response")
	ErrMismatch         = errors.New("verification mismatch")
)
