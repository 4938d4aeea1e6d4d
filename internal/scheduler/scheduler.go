package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"PriceArchive/internal/model"
)

// Runner performs one full refresh.
type Runner interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// Scheduler re-runs the full refresh on a cron expression.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler. Overlapping triggers are skipped
// while a run is still in progress.
func NewScheduler(ctx context.Context, r Runner) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Runner: r,
		Ctx:    ctx,
	}
}

// Register adds the refresh task for the given cron spec (seconds field first).
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately.
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if s.Ctx.Err() != nil {
		return
	}
	log.Info().Msg("running scheduled refresh")
	if _, err := s.Runner.Run(s.Ctx); err != nil {
		log.Error().Err(err).Msg("scheduled refresh failed")
	}
}
