package model

import "time"

// Candle is a single OHLCV observation keyed by its open time in
// milliseconds since the Unix epoch (UTC).
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Time returns the candle open time in UTC.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// Series holds every candle fetched for one pair and timeframe.
// Candles are strictly increasing by Timestamp and lie within [Since, Until].
type Series struct {
	Pair      string
	Timeframe string
	Since     int64
	Until     int64 // "now" snapshot taken when the fetch started
	Candles   []Candle
	Requests  int
}

// Len returns the number of candles in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candles)
}

// PriceSnapshot holds indicators computed from the tail of a series.
type PriceSnapshot struct {
	LastClose  float64
	MA200      float64 // zero when fewer than 200 candles
	RSI14      float64 // zero when 14 changes are not yet available
	High1y     float64
	Low1y      float64
	Position1y float64 // 0.0 ~ 1.0
}
