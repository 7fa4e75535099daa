// Package main is the entry point for the account aggregation gateway.
// The gateway fronts six upstream account systems behind one API, folding
// cache state, retries and circuit breakers into per-account results so
// clients never see a raw backend failure.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbridge/aqs/internal/config"
	"github.com/finbridge/aqs/internal/di"
	"github.com/finbridge/aqs/internal/scheduler"
	"github.com/finbridge/aqs/internal/server"
	"github.com/finbridge/aqs/pkg/logger"
)

func main() {
	// Load configuration first to get log level.
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting account aggregation gateway")

	// Wire all dependencies: cache database, adapters, resilience pipeline,
	// orchestrator and background jobs.
	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Background jobs: expired-row cleanup daily, health sweep every minute,
	// database maintenance weekly, backups nightly when configured.
	sched := scheduler.New(log)
	if err := sched.AddJob("0 30 3 * * *", jobs.CacheCleanup); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	if err := sched.AddJob("@every 1m", jobs.HealthSweep); err != nil {
		log.Fatal().Err(err).Msg("Failed to register health sweep job")
	}
	if err := sched.AddJob("0 0 4 * * SUN", jobs.Maintenance); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}
	if jobs.Backup != nil {
		if err := sched.AddJob("0 0 2 * * *", jobs.Backup); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}

	srv := server.New(server.Config{
		Log:           log,
		Config:        cfg,
		CacheDB:       container.CacheDB,
		Orchestrator:  container.Orchestrator,
		Cache:         container.Cache,
		Breakers:      container.Breakers,
		Bus:           container.EventBus,
		HealthSweeper: container.HealthSweeper,
		BackupService: container.BackupService,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sched.Start()

	// Seed health verdicts right away instead of waiting for the first tick.
	go func() {
		if err := sched.RunNow(jobs.HealthSweep); err != nil {
			log.Warn().Err(err).Msg("Initial health sweep failed")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	sched.Stop()

	// In-flight requests get up to 10 seconds to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
