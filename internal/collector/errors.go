package collector

import "fmt"

// ProviderError wraps a failure reported by the remote provider
// (transport, auth, unknown symbol, exhausted rate limit).
type ProviderError struct {
	Provider string
	Pair     string
	Cursor   int64
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: fetch %s at %d: %v", e.Provider, e.Pair, e.Cursor, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NonProgressError reports a page that could not move the cursor forward,
// or one whose candles were not strictly ascending.
type NonProgressError struct {
	Pair   string
	Cursor int64
	Last   int64
	Reason string
}

func (e *NonProgressError) Error() string {
	return fmt.Sprintf("pagination stalled for %s: cursor=%d last=%d: %s", e.Pair, e.Cursor, e.Last, e.Reason)
}
