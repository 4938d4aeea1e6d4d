package exporter

import "fmt"

// SerializationError reports a candle whose close cannot be written as a
// JSON number.
type SerializationError struct {
	Index     int
	Timestamp int64
	Reason    string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize candle %d (ts=%d): %s", e.Index, e.Timestamp, e.Reason)
}

// IOError wraps a filesystem failure while writing the document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
