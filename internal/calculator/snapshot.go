package calculator

import (
	"PriceArchive/internal/model"
)

const (
	maPeriod  = 200
	rsiPeriod = 14
	// yearWindow is one year of daily candles on a 24/7 market.
	yearWindow = 365
)

// Snapshot summarises the tail of a series for run reports.
// It returns nil for an empty series. Indicators that lack data stay zero.
func Snapshot(candles []model.Candle) *model.PriceSnapshot {
	if len(candles) == 0 {
		return nil
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	s := &model.PriceSnapshot{LastClose: closes[len(closes)-1]}

	if ma, ok := movingAverage(closes, maPeriod); ok {
		s.MA200 = ma
	}
	if rsi, ok := wilderRSI(closes, rsiPeriod); ok {
		s.RSI14 = rsi
	}
	s.High1y, s.Low1y = extremes(candles, yearWindow)
	s.Position1y = position(s.LastClose, s.High1y, s.Low1y)
	return s
}

// movingAverage is the mean of the last period closes.
func movingAverage(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), true
}

// wilderRSI seeds average gain and loss from the first period changes and
// smooths them over the rest of the history.
func wilderRSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) <= period {
		return 0, false
	}
	var gain, loss float64
	for i := 1; i < len(closes); i++ {
		up, down := 0.0, 0.0
		if d := closes[i] - closes[i-1]; d > 0 {
			up = d
		} else {
			down = -d
		}
		if i <= period {
			gain += up / float64(period)
			loss += down / float64(period)
			continue
		}
		gain = (gain*float64(period-1) + up) / float64(period)
		loss = (loss*float64(period-1) + down) / float64(period)
	}
	if loss == 0 {
		return 100, true
	}
	return 100 - 100/(1+gain/loss), true
}

// extremes returns the highest high and lowest low of the last window candles.
func extremes(candles []model.Candle, window int) (high, low float64) {
	if window > 0 && len(candles) > window {
		candles = candles[len(candles)-window:]
	}
	high, low = candles[0].High, candles[0].Low
	for _, c := range candles[1:] {
		high = max(high, c.High)
		low = min(low, c.Low)
	}
	return high, low
}

// position places price within [low, high] as 0..1; a flat range is 0.5.
func position(price, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	return min(max((price-low)/(high-low), 0), 1)
}
