package collector

import (
	"context"
	"time"

	"PriceArchive/internal/model"
)

// MockProvider serves fixed candles in pages, for development and testing.
type MockProvider struct {
	Candles  []model.Candle
	PageSize int
	Now      int64 // 0 means wall clock
	Err      error // returned from every FetchOHLCV when set

	// Pages, when set, is served verbatim one page per request regardless
	// of since, followed by empty pages.
	Pages [][]model.Candle

	Requests int
	Cursors  []int64
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) ParseISO8601(s string) (int64, error) {
	return parseISO8601(s)
}

func (m *MockProvider) Milliseconds() int64 {
	if m.Now != 0 {
		return m.Now
	}
	return time.Now().UnixMilli()
}

func (m *MockProvider) FetchOHLCV(_ context.Context, _, _ string, since int64, limit int) ([]model.Candle, error) {
	m.Requests++
	m.Cursors = append(m.Cursors, since)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Pages != nil {
		i := m.Requests - 1
		if i >= len(m.Pages) {
			return nil, nil
		}
		return m.Pages[i], nil
	}

	size := m.PageSize
	if limit > 0 && (size == 0 || limit < size) {
		size = limit
	}
	if size <= 0 {
		size = 500
	}
	var page []model.Candle
	for _, c := range m.Candles {
		if c.Timestamp < since {
			continue
		}
		page = append(page, c)
		if len(page) == size {
			break
		}
	}
	return page, nil
}

// GenerateDailyCandles builds count consecutive daily candles starting at
// start (UTC midnight) around basePrice.
func GenerateDailyCandles(start time.Time, basePrice float64, count int) []model.Candle {
	day := start.UTC().Truncate(24 * time.Hour)
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		candles[i] = model.Candle{
			Timestamp: day.AddDate(0, 0, i).UnixMilli(),
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000000,
		}
	}
	return candles
}

func parseISO8601(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
