package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"PriceArchive/internal/model"
)

const (
	binanceBaseURL      = "https://api.binance.com"
	binanceKlinesPath   = "/api/v3/klines"
	binanceDefaultLimit = 500
)

// BinanceProvider implements Provider using the Binance spot REST API.
type BinanceProvider struct {
	Client *resty.Client
	Now    func() time.Time
}

// NewBinanceProvider creates a provider with optional proxy support.
// Transient failures (429, 5xx, network errors) are retried by the
// transport up to retryCount times.
func NewBinanceProvider(baseURL, apiKey, proxyURL string, retryCount int) *BinanceProvider {
	if baseURL == "" {
		baseURL = binanceBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(retryCount).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(30 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if apiKey != "" {
		client.SetHeader("X-MBX-APIKEY", apiKey)
	}
	return &BinanceProvider{Client: client, Now: time.Now}
}

func (b *BinanceProvider) Name() string { return "binance" }

func (b *BinanceProvider) ParseISO8601(s string) (int64, error) {
	return parseISO8601(s)
}

func (b *BinanceProvider) Milliseconds() int64 {
	return b.Now().UnixMilli()
}

// binanceError is the error payload returned with non-2xx responses.
type binanceError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// BinanceSymbol converts "SOL/USDT" to "SOLUSDT".
func BinanceSymbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "/", ""))
}

func (b *BinanceProvider) FetchOHLCV(ctx context.Context, pair, timeframe string, since int64, limit int) ([]model.Candle, error) {
	if limit <= 0 {
		limit = binanceDefaultLimit
	}
	resp, err := b.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":    BinanceSymbol(pair),
			"interval":  timeframe,
			"startTime": strconv.FormatInt(since, 10),
			"limit":     strconv.Itoa(limit),
		}).
		Get(binanceKlinesPath)
	if err != nil {
		return nil, fmt.Errorf("binance request: %w", err)
	}
	if resp.IsError() {
		var apiErr binanceError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("binance: status %d, code %d: %s", resp.StatusCode(), apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("binance: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return decodeBinanceKlines(resp.Body())
}

// decodeBinanceKlines parses rows of
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
func decodeBinanceKlines(body []byte) ([]model.Candle, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline %d: expected at least 6 fields, got %d", i, len(row))
		}
		var ts int64
		if err := json.Unmarshal(row[0], &ts); err != nil {
			return nil, fmt.Errorf("kline %d open time: %w", i, err)
		}
		var vals [5]float64
		for j := range vals {
			v, err := decodeBinanceNumber(row[j+1])
			if err != nil {
				return nil, fmt.Errorf("kline %d field %d: %w", i, j+1, err)
			}
			vals[j] = v
		}
		candles = append(candles, model.Candle{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return candles, nil
}

// decodeBinanceNumber accepts both quoted decimals and bare JSON numbers.
func decodeBinanceNumber(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
