package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"PriceArchive/internal/model"
)

// DefaultSince is early enough to precede the listing of any asset.
const DefaultSince = "2010-01-01T00:00:00Z"

// Fetcher walks a Provider page by page and assembles the full series.
type Fetcher struct {
	Provider  Provider
	PageLimit int // 0 means provider default
}

// NewFetcher creates a Fetcher for the given provider.
func NewFetcher(p Provider, pageLimit int) *Fetcher {
	return &Fetcher{Provider: p, PageLimit: pageLimit}
}

// FetchFrom is Fetch with an ISO-8601 start. An empty start means DefaultSince.
func (f *Fetcher) FetchFrom(ctx context.Context, pair, timeframe, sinceISO string) (*model.Series, error) {
	if sinceISO == "" {
		sinceISO = DefaultSince
	}
	since, err := f.Provider.ParseISO8601(sinceISO)
	if err != nil {
		return nil, fmt.Errorf("parse since %q: %w", sinceISO, err)
	}
	return f.Fetch(ctx, pair, timeframe, since)
}

// Fetch retrieves every candle in [since, now], where now is sampled once
// when the call starts. The cursor moves to last+1 after each page, so the
// loop ends on an empty page, when the cursor passes now, or with a
// NonProgressError when a page cannot move it.
//
// Only the first page may end exactly at the cursor, since a single candle
// at since is a complete answer. Any later page must end beyond the cursor.
func (f *Fetcher) Fetch(ctx context.Context, pair, timeframe string, since int64) (*model.Series, error) {
	now := f.Provider.Milliseconds()
	series := &model.Series{
		Pair:      pair,
		Timeframe: timeframe,
		Since:     since,
		Until:     now,
		Candles:   []model.Candle{},
	}

	cursor := since
	for cursor <= now {
		page, err := f.Provider.FetchOHLCV(ctx, pair, timeframe, cursor, f.PageLimit)
		series.Requests++
		if err != nil {
			return nil, &ProviderError{Provider: f.Provider.Name(), Pair: pair, Cursor: cursor, Err: err}
		}
		if len(page) == 0 {
			break
		}

		last := page[len(page)-1].Timestamp
		if last < cursor {
			return nil, &NonProgressError{Pair: pair, Cursor: cursor, Last: last, Reason: "page ends before cursor"}
		}
		if last == cursor && series.Requests > 1 {
			return nil, &NonProgressError{Pair: pair, Cursor: cursor, Last: last, Reason: "page ends at cursor"}
		}

		accepted, done, err := clipPage(page, cursor, now)
		if err != nil {
			return nil, &NonProgressError{Pair: pair, Cursor: cursor, Last: last, Reason: err.Error()}
		}
		series.Candles = append(series.Candles, accepted...)

		log.Debug().
			Str("pair", pair).
			Int64("cursor", cursor).
			Int("page", len(page)).
			Int("accepted", len(accepted)).
			Msg("page fetched")

		if done {
			break
		}
		cursor = accepted[len(accepted)-1].Timestamp + 1
	}

	log.Info().
		Str("provider", f.Provider.Name()).
		Str("pair", pair).
		Str("timeframe", timeframe).
		Int("candles", len(series.Candles)).
		Int("requests", series.Requests).
		Msg("series fetched")
	return series, nil
}

// clipPage drops overlap before cursor and anything after now.
// done is true once a candle beyond now has been seen or nothing is left
// to advance on.
func clipPage(page []model.Candle, cursor, now int64) (accepted []model.Candle, done bool, err error) {
	for i, c := range page {
		if i > 0 && c.Timestamp <= page[i-1].Timestamp {
			return nil, false, fmt.Errorf("timestamp %d not after %d", c.Timestamp, page[i-1].Timestamp)
		}
	}
	for _, c := range page {
		if c.Timestamp < cursor {
			continue
		}
		if c.Timestamp > now {
			return accepted, true, nil
		}
		accepted = append(accepted, c)
	}
	return accepted, len(accepted) == 0, nil
}
