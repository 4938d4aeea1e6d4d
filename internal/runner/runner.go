package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"PriceArchive/internal/calculator"
	"PriceArchive/internal/collector"
	"PriceArchive/internal/exporter"
	"PriceArchive/internal/model"
	"PriceArchive/internal/notifier"
	"PriceArchive/internal/recorder"
)

// Job describes what a run fetches and where it writes.
type Job struct {
	Pair       string
	Timeframe  string
	Since      string // ISO-8601; empty means collector.DefaultSince
	OutputPath string
}

// Runner performs full fetch-and-write runs, one at a time.
type Runner struct {
	Fetcher  *collector.Fetcher
	Recorder recorder.Recorder
	Notifier notifier.Notifier
	Job      Job

	mu sync.Mutex
}

// New creates a Runner. A nil recorder or notifier is replaced by a no-op.
func New(f *collector.Fetcher, rec recorder.Recorder, n notifier.Notifier, job Job) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	return &Runner{Fetcher: f, Recorder: rec, Notifier: n, Job: job}
}

// Run fetches the whole series, writes the document, then records and
// reports the outcome. Recorder and notifier failures are only logged.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := &model.RunSummary{
		ID:         uuid.NewString(),
		Provider:   r.Fetcher.Provider.Name(),
		Pair:       r.Job.Pair,
		Timeframe:  r.Job.Timeframe,
		OutputPath: r.Job.OutputPath,
		StartedAt:  time.Now(),
	}
	logger := log.With().Str("run_id", sum.ID).Str("pair", sum.Pair).Logger()
	logger.Info().Str("provider", sum.Provider).Str("timeframe", sum.Timeframe).Msg("run started")

	err := r.execute(ctx, sum)
	sum.Duration = time.Since(sum.StartedAt)
	if err != nil {
		sum.Status = model.RunFailed
		sum.Err = err
		logger.Error().Err(err).Msg("run failed")
	} else {
		sum.Status = model.RunSucceeded
		logger.Info().Int("candles", sum.Candles).Dur("took", sum.Duration).Str("path", sum.OutputPath).Msg("run finished")
	}

	r.record(sum)
	if nerr := r.Notifier.SendWithRetry(ctx, notifier.FormatRunReport(sum), 3); nerr != nil {
		logger.Error().Err(nerr).Msg("send notification")
	}
	return sum, err
}

func (r *Runner) execute(ctx context.Context, sum *model.RunSummary) error {
	series, err := r.Fetcher.FetchFrom(ctx, r.Job.Pair, r.Job.Timeframe, r.Job.Since)
	if err != nil {
		return fmt.Errorf("fetch series: %w", err)
	}
	sum.Since = series.Since
	sum.Until = series.Until
	sum.Requests = series.Requests
	sum.Candles = series.Len()
	sum.Snapshot = calculator.Snapshot(series.Candles)

	doc, err := exporter.Serialize(series)
	if err != nil {
		return fmt.Errorf("serialize series: %w", err)
	}
	if len(doc) > 0 {
		sum.FirstDate = doc[0].Date
		sum.LastDate = doc[len(doc)-1].Date
	}
	if err := exporter.Write(doc, r.Job.OutputPath); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (r *Runner) record(sum *model.RunSummary) {
	rec := &recorder.RunRecord{
		ID:         sum.ID,
		StartedAt:  sum.StartedAt,
		FinishedAt: sum.StartedAt.Add(sum.Duration),
		Provider:   sum.Provider,
		Pair:       sum.Pair,
		Timeframe:  sum.Timeframe,
		SinceMs:    sum.Since,
		UntilMs:    sum.Until,
		Candles:    sum.Candles,
		Requests:   sum.Requests,
		FirstDate:  sum.FirstDate,
		LastDate:   sum.LastDate,
		OutputPath: sum.OutputPath,
		Status:     string(sum.Status),
	}
	if sum.Err != nil {
		rec.Error = sum.Err.Error()
	}
	if err := r.Recorder.RecordRun(rec); err != nil {
		log.Error().Err(err).Str("run_id", sum.ID).Msg("record run")
	}
}
