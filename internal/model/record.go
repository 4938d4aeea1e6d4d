package model

// Record maps a UTC calendar date (YYYYMMDD) to a closing price.
// It encodes as a single-key JSON object.
type Record struct {
	Date  string
	Close float64
}

// Document is the ordered list of records written to disk.
// Sub-daily timeframes may produce several records with the same Date;
// they are kept as-is.
type Document []Record
