package model

import "time"

// RunStatus is the outcome of one fetch-and-write run.
type RunStatus string

const (
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
)

// RunSummary describes a completed run for the run log and notifications.
type RunSummary struct {
	ID         string
	Provider   string
	Pair       string
	Timeframe  string
	Since      int64
	Until      int64
	Candles    int
	Requests   int
	FirstDate  string
	LastDate   string
	OutputPath string
	Snapshot   *PriceSnapshot
	StartedAt  time.Time
	Duration   time.Duration
	Status     RunStatus
	Err        error
}
