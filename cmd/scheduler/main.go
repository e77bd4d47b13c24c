/**
 * @description
 * This is the main entry point for the scheduler worker. It is a non-HTTP,
 * long-running process that executes the renewal reminder sweep and the
 * currency rate refresh on cron schedules.
 */
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/madaldho/sub-scribe-light/internal/app"
	"github.com/madaldho/sub-scribe-light/internal/config"
	"github.com/madaldho/sub-scribe-light/internal/store"
	"github.com/madaldho/sub-scribe-light/pkg/rabbitmq"
	"github.com/madaldho/sub-scribe-light/pkg/ratesclient"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = 100
	poolCfg.MinConns = 20
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	var events app.EventPublisher
	if cfg.AMQPURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.AMQPURL)
		if err != nil {
			logger.Error("failed to connect to message broker, events disabled", "error", err)
		} else {
			defer producer.Close()
			events = producer
		}
	}

	// Initialize dependencies
	repository := store.NewRepository(dbpool)
	rates := ratesclient.NewClient(cfg.ExchangeRateAPIURL)
	jobs := app.NewJobs(repository, rates, events, logger)
	scheduler := app.NewScheduler(jobs, logger, *cfg)

	// Start the cron scheduler in the background
	scheduler.Start()
	logger.Info("scheduler started")

	// Wait for termination signal to gracefully shut down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping scheduler")
	stopCtx := scheduler.Stop()
	<-stopCtx.Done() // Wait for running jobs to finish
	logger.Info("scheduler stopped gracefully")
}
