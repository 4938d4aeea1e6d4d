package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder_RecordAndList(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rec.RecordRun(&RunRecord{
		ID: "a", StartedAt: base, FinishedAt: base.Add(time.Second),
		Provider: "binance", Pair: "SOL/USDT", Timeframe: "1d",
		Candles: 1400, Requests: 4, FirstDate: "20200811", LastDate: "20240601",
		OutputPath: "data_sol.json", Status: "SUCCEEDED",
	}))
	require.NoError(t, rec.RecordRun(&RunRecord{
		ID: "b", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour),
		Provider: "binance", Pair: "SOL/USDT", Timeframe: "1d",
		Status: "FAILED", Error: "binance: status 418",
	}))

	runs, err := rec.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "FAILED", runs[0].Status)
	assert.Equal(t, "binance: status 418", runs[0].Error)
	assert.Equal(t, 1400, runs[1].Candles)
	assert.True(t, runs[1].StartedAt.Equal(base))
}

func TestSQLiteRecorder_DuplicateIDRejected(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	r := &RunRecord{ID: "same", StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, rec.RecordRun(r))
	assert.Error(t, rec.RecordRun(r))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&RunRecord{}))
	assert.NoError(t, r.Close())
}
