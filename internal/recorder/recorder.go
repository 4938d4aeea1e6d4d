package recorder

import "time"

// RunRecord is one row of the fetch run log.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Provider   string
	Pair       string
	Timeframe  string
	SinceMs    int64
	UntilMs    int64
	Candles    int
	Requests   int
	FirstDate  string
	LastDate   string
	OutputPath string
	Status     string // "SUCCEEDED" or "FAILED"
	Error      string
}

// Recorder persists the history of fetch runs.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}
