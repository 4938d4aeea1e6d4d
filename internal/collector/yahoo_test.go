package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooBody = `{"chart":{"result":[{
	"timestamp":[1609459200,1609545600,1609632000,1609718400],
	"indicators":{"quote":[{
		"open":[1,2,null,4],
		"high":[1,2,null,4],
		"low":[1,2,null,4],
		"close":[10.5,20.5,null,40.5],
		"volume":[100,200,null,400]
	}]}
}],"error":null}}`

func TestYahooProvider_FetchOHLCV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BTC-USD", r.URL.Path)
		assert.Equal(t, "1wk", r.URL.Query().Get("interval"))
		assert.Equal(t, "1609459200", r.URL.Query().Get("period1"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", 0)
	p.Now = func() time.Time { return time.Unix(1609800000, 0) }

	candles, err := p.FetchOHLCV(context.Background(), "BTC/USD", "1w", 1609459200000, 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1609459200000), candles[0].Timestamp)
	assert.Equal(t, 20.5, candles[1].Close)
}

func TestYahooProvider_SkipsNullBarsAndEarlierCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", 0)
	candles, err := p.FetchOHLCV(context.Background(), "BTC/USD", "1d", 1609545600001, 0)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 40.5, candles[0].Close)
}

func TestYahooProvider_OneDownloadPerFetch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "1609800000", r.URL.Query().Get("period2"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", 0)
	p.Now = func() time.Time { return time.Unix(1609800000, 0) }

	series, err := NewFetcher(p, 2).Fetch(context.Background(), "BTC/USD", "1d", 1609459200000)
	require.NoError(t, err)
	assert.Len(t, series.Candles, 3)
	assert.Equal(t, 3, series.Requests)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	candles, err := p.FetchOHLCV(context.Background(), "BTC/USD", "1d", 1609545600001, 2)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 40.5, candles[0].Close)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	p.Milliseconds()
	_, _ = p.FetchOHLCV(context.Background(), "BTC/USD", "1d", 1609459200000, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestYahooProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", 0)
	_, err := p.FetchOHLCV(context.Background(), "NOPE", "1d", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooSymbol(t *testing.T) {
	p := NewYahooProvider("", "", 0)
	assert.Equal(t, "^GSPC", p.yahooSymbol("SPX500"))
	assert.Equal(t, "ETH-USD", p.yahooSymbol("ETH/USD"))
}
