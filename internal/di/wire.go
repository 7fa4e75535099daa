package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/adapters/bank"
	"github.com/finbridge/aqs/internal/adapters/creditcard"
	"github.com/finbridge/aqs/internal/adapters/crypto"
	"github.com/finbridge/aqs/internal/adapters/investment"
	"github.com/finbridge/aqs/internal/adapters/legacy"
	"github.com/finbridge/aqs/internal/adapters/loan"
	"github.com/finbridge/aqs/internal/cache"
	"github.com/finbridge/aqs/internal/config"
	"github.com/finbridge/aqs/internal/database"
	"github.com/finbridge/aqs/internal/events"
	"github.com/finbridge/aqs/internal/orchestrator"
	"github.com/finbridge/aqs/internal/registry"
	"github.com/finbridge/aqs/internal/reliability"
	"github.com/finbridge/aqs/internal/resilience"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
// 1. Open the cache database
// 2. Build the core pipeline (registry, breakers, bus, orchestrator)
// 3. Register backend adapters
// 4. Build background jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	container := &Container{}

	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	container.CacheDB = cacheDB

	store, err := cache.NewStore(cacheDB)
	if err != nil {
		cacheDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}
	container.CacheStore = store
	container.Cache = cache.New(store, log)

	container.EventBus = events.NewBus(log)
	container.Breakers = resilience.NewBreakerStore(cfg.BreakerThreshold, cfg.BreakerCooldown, log)
	container.Policy = resilience.NewPolicy(container.Breakers, log)

	// Breaker transitions surface on the event stream.
	bus := container.EventBus
	container.Breakers.SetOnStateChange(func(backend string, from, to resilience.State) {
		bus.Publish(&events.BreakerStateData{
			Backend: backend,
			From:    string(from),
			To:      string(to),
		})
	})

	container.Registry = registry.New(log)
	registerAdapters(container.Registry, cfg, log)

	container.Orchestrator = orchestrator.New(
		container.Registry,
		container.Cache,
		container.Policy,
		container.EventBus,
		orchestrator.Options{
			MaxConcurrency: cfg.MaxConcurrency,
			BatchTimeout:   cfg.BatchTimeout,
		},
		log,
	)

	container.HealthSweeper = orchestrator.NewHealthSweeper(container.Registry, container.EventBus, log)

	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(
			cfg.Backup.Endpoint,
			cfg.Backup.Region,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			cacheDB.Close()
			return nil, nil, fmt.Errorf("failed to initialize backup client: %w", err)
		}
		container.S3Client = s3Client
		container.BackupService = reliability.NewBackupService(s3Client, cacheDB, cfg.DataDir, log)
	}

	jobs := &JobInstances{
		CacheCleanup: cache.NewCleanupJob(container.Cache, log),
		HealthSweep:  container.HealthSweeper,
		Maintenance:  reliability.NewMaintenanceJob(cacheDB, log),
	}
	if container.BackupService != nil {
		jobs.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}

// registerAdapters builds one adapter per backend from its config block.
func registerAdapters(reg *registry.Registry, cfg *config.Config, log zerolog.Logger) {
	reg.Register(bank.New(cfg.Bank.BaseURL, cfg.Bank.APIKey, log))
	reg.Register(creditcard.New(cfg.CreditCard.BaseURL, cfg.CreditCard.APIKey, log))
	reg.Register(loan.New(cfg.Loan.BaseURL, cfg.Loan.APIKey, log))
	reg.Register(investment.New(cfg.Investment.BaseURL, cfg.Investment.APIKey, cfg.Investment.Secret, log))
	reg.Register(legacy.New(cfg.Legacy.BaseURL, cfg.Legacy.Username, cfg.Legacy.Password, log))
	reg.Register(crypto.New(cfg.Crypto.BaseURL, cfg.Crypto.APIKey, log))
}
