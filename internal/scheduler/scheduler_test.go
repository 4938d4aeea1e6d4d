package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceArchive/internal/model"
)

type countingRunner struct {
	calls int32
}

func (c *countingRunner) Run(context.Context) (*model.RunSummary, error) {
	atomic.AddInt32(&c.calls, 1)
	return &model.RunSummary{Status: model.RunSucceeded}, nil
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &countingRunner{})
	assert.Error(t, s.Register("every day please"))
}

func TestRegister_SecondsSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &countingRunner{})
	require.NoError(t, s.Register("0 30 2 * * *"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestRunNow(t *testing.T) {
	r := &countingRunner{}
	s := NewScheduler(context.Background(), r)
	s.RunNow()
	assert.Equal(t, int32(1), atomic.LoadInt32(&r.calls))
}

func TestRunNow_SkippedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &countingRunner{}
	NewScheduler(ctx, r).RunNow()
	assert.Zero(t, atomic.LoadInt32(&r.calls))
}
