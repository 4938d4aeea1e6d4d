package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"PriceArchive/internal/collector"
	"PriceArchive/internal/config"
	"PriceArchive/internal/logging"
	"PriceArchive/internal/notifier"
	"PriceArchive/internal/recorder"
	"PriceArchive/internal/runner"
	"PriceArchive/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("PriceArchive starting")

	// Init provider
	provider, err := collector.NewProvider(cfg.DataSource.Provider, cfg.DataSource.BaseURL,
		cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.RetryCount)
	if err != nil {
		log.Fatal().Err(err).Msg("init provider")
	}
	log.Info().Str("provider", provider.Name()).Msg("data source ready")

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init notifier
	var n notifier.Notifier = notifier.NoopNotifier{}
	if cfg.Telegram.BotToken != "" {
		n = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	outPath := cfg.OutputPath()
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("create output dir")
		}
	}

	r := runner.New(collector.NewFetcher(provider, cfg.DataSource.PageLimit), rec, n, runner.Job{
		Pair:       cfg.Pair(),
		Timeframe:  cfg.DataSource.Timeframe,
		Since:      cfg.DataSource.Since,
		OutputPath: outPath,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One-shot mode
	if cfg.Schedule.RefreshCron == "" {
		if _, err := r.Run(ctx); err != nil {
			rec.Close()
			log.Fatal().Err(err).Msg("run failed")
		}
		return
	}

	sched := scheduler.NewScheduler(ctx, r)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, refreshing now")
		go sched.RunNow()
	}

	log.Info().Str("cron", cfg.Schedule.RefreshCron).Msg("PriceArchive is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	log.Info().Msg("PriceArchive stopped")
}
