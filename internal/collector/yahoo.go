package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"PriceArchive/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance chart API.
// The API answers a whole range at once; pages are cut client-side from
// one download per fetch.
type YahooProvider struct {
	Client    *resty.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Now       func() time.Time

	mu    sync.Mutex
	until int64 // ms, set by Milliseconds
	cache *yahooRange
}

// yahooRange is one chart download, kept for the later pages of a fetch.
type yahooRange struct {
	symbol   string
	interval string
	from     int64
	bars     []model.Candle
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(baseURL, proxyURL string, retryCount int) *YahooProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(retryCount).
		SetHeader("User-Agent", "Mozilla/5.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &YahooProvider{
		Client: client,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Now: time.Now,
	}
}

func (f *YahooProvider) Name() string { return "yahoo" }

func (f *YahooProvider) ParseISO8601(s string) (int64, error) {
	return parseISO8601(s)
}

// Milliseconds samples the clock and starts a new fetch. The next
// FetchOHLCV downloads everything up to this instant.
func (f *YahooProvider) Milliseconds() int64 {
	now := f.Now().UnixMilli()
	f.mu.Lock()
	f.until, f.cache = now, nil
	f.mu.Unlock()
	return now
}

// yahooSymbol maps "BTC/USD" to "BTC-USD" and known aliases to tickers.
func (f *YahooProvider) yahooSymbol(pair string) string {
	if mapped, ok := f.SymbolMap[pair]; ok {
		return mapped
	}
	return strings.ReplaceAll(pair, "/", "-")
}

var yahooIntervals = map[string]string{
	"1w": "1wk",
	"1M": "1mo",
}

func yahooInterval(timeframe string) string {
	if v, ok := yahooIntervals[timeframe]; ok {
		return v
	}
	return timeframe
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

func (f *YahooProvider) FetchOHLCV(ctx context.Context, pair, timeframe string, since int64, limit int) ([]model.Candle, error) {
	symbol, interval := f.yahooSymbol(pair), yahooInterval(timeframe)

	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.cache
	if c == nil || c.symbol != symbol || c.interval != interval || since < c.from {
		until := f.until
		if until == 0 {
			until = f.Now().UnixMilli()
		}
		bars, err := f.download(ctx, symbol, interval, since, until)
		if err != nil {
			return nil, err
		}
		c = &yahooRange{symbol: symbol, interval: interval, from: since, bars: bars}
		f.cache = c
	}

	lo := sort.Search(len(c.bars), func(i int) bool { return c.bars[i].Timestamp >= since })
	hi := len(c.bars)
	if limit > 0 && hi-lo > limit {
		hi = lo + limit
	}
	return c.bars[lo:hi:hi], nil
}

func (f *YahooProvider) download(ctx context.Context, symbol, interval string, since, until int64) ([]model.Candle, error) {
	period1 := since / 1000
	if since%1000 != 0 {
		period1++
	}
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": interval,
			"period1":  strconv.FormatInt(period1, 10),
			"period2":  strconv.FormatInt(until/1000, 10),
		}).
		Get("/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		if resp.IsError() {
			return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
		}
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode())
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c, ok := at(quote.Close, i)
		if !ok {
			continue // null bars (holidays etc.)
		}
		ms := ts * 1000
		if ms < since {
			continue
		}
		o, _ := at(quote.Open, i)
		h, _ := at(quote.High, i)
		l, _ := at(quote.Low, i)
		v, _ := at(quote.Volume, i)
		bars = append(bars, model.Candle{Timestamp: ms, Open: o, High: h, Low: l, Close: c, Volume: v})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	return bars, nil
}
