package collector

import (
	"context"
	"fmt"
	"time"

	"PriceArchive/internal/model"
)

// Provider is a remote market-data source that serves candles in pages.
// Pages are returned in ascending timestamp order, starting at or after since.
type Provider interface {
	Name() string
	// ParseISO8601 converts an ISO-8601 instant to provider milliseconds.
	ParseISO8601(s string) (int64, error)
	// Milliseconds returns the provider's notion of "now".
	Milliseconds() int64
	// FetchOHLCV returns up to limit candles starting at since.
	// A limit of zero lets the provider pick its default page size.
	FetchOHLCV(ctx context.Context, pair, timeframe string, since int64, limit int) ([]model.Candle, error)
}

// NewProvider builds the named provider: "binance", "yahoo" or "mock".
func NewProvider(name, baseURL, apiKey, proxyURL string, retryCount int) (Provider, error) {
	switch name {
	case "binance":
		return NewBinanceProvider(baseURL, apiKey, proxyURL, retryCount), nil
	case "yahoo":
		return NewYahooProvider(baseURL, proxyURL, retryCount), nil
	case "mock":
		start := time.Now().UTC().AddDate(-2, 0, 0)
		return &MockProvider{Candles: GenerateDailyCandles(start, 100, 730), PageSize: 500}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
