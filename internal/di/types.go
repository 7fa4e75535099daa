// Package di provides dependency injection wiring for the gateway.
//
// The Container is the single source of truth for all service instances. It
// is created by Wire() and handed to the HTTP server and the scheduler.
package di

import (
	"github.com/finbridge/aqs/internal/cache"
	"github.com/finbridge/aqs/internal/database"
	"github.com/finbridge/aqs/internal/events"
	"github.com/finbridge/aqs/internal/orchestrator"
	"github.com/finbridge/aqs/internal/registry"
	"github.com/finbridge/aqs/internal/reliability"
	"github.com/finbridge/aqs/internal/resilience"
	"github.com/finbridge/aqs/internal/scheduler"
)

// Container holds all dependencies for the application.
type Container struct {
	// Storage
	CacheDB    *database.DB
	CacheStore *cache.Store
	Cache      *cache.SummaryCache

	// Core
	Registry     *registry.Registry
	Breakers     *resilience.BreakerStore
	Policy       *resilience.Policy
	EventBus     *events.Bus
	Orchestrator *orchestrator.Orchestrator

	// Background
	HealthSweeper *orchestrator.HealthSweeper

	// Backup (nil unless configured)
	S3Client      *reliability.S3Client
	BackupService *reliability.BackupService
}

// JobInstances holds the background jobs for scheduler registration and
// manual triggering.
type JobInstances struct {
	CacheCleanup scheduler.Job
	HealthSweep  scheduler.Job
	Maintenance  scheduler.Job
	Backup       scheduler.Job // nil unless backups are configured
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
