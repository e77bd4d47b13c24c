/**
 * @description
 * This is the main entry point for the API service. It initializes and
 * wires together configuration, the database connection, the repository,
 * services, and the HTTP router, then starts the server.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/madaldho/sub-scribe-light/internal/api"
	"github.com/madaldho/sub-scribe-light/internal/app"
	"github.com/madaldho/sub-scribe-light/internal/config"
	"github.com/madaldho/sub-scribe-light/internal/store"
	"github.com/madaldho/sub-scribe-light/pkg/rabbitmq"
	"github.com/madaldho/sub-scribe-light/pkg/ratesclient"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env if present, then configuration from environment variables
	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish connection to PostgreSQL with connection pool configuration
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = 100
	poolCfg.MinConns = 20
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	// Use simple protocol to stay compatible with transaction pooling
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// The event producer is optional; the service degrades to logging when
	// no broker is configured.
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

	// Initialize application layers
	repository := store.NewRepository(dbpool)
	service := app.NewService(repository, events, logger)
	rates := ratesclient.NewClient(cfg.ExchangeRateAPIURL)
	jobs := app.NewJobs(repository, rates, events, logger)
	handler := api.NewHandler(service, jobs)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
