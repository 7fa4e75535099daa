package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/database"
)

// backupJobTimeout bounds one backup run end to end.
const backupJobTimeout = 10 * time.Minute

// BackupJob runs the cache backup on a schedule.
type BackupJob struct {
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a scheduled backup job.
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "cache_backup").Logger(),
	}
}

// Run executes one backup followed by rotation.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupJobTimeout)
	defer cancel()

	if err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}
	if err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		// The backup itself succeeded; rotation can catch up next run.
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *BackupJob) Name() string { return "cache_backup" }

// MaintenanceJob keeps the cache database healthy: WAL checkpoint to prevent
// bloat, integrity check, and VACUUM to reclaim space freed by expired rows.
type MaintenanceJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMaintenanceJob creates a scheduled maintenance job over the cache database.
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Run executes one maintenance pass.
func (j *MaintenanceJob) Run() error {
	startTime := time.Now()

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		// Not critical, the next checkpoint will pick up the backlog.
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := j.db.QuickCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("Cache database integrity check failed")
		return err
	}

	statsBefore, _ := j.db.GetStats()
	if _, err := j.db.Exec("VACUUM"); err != nil {
		j.log.Warn().Err(err).Msg("VACUUM failed")
	} else if statsBefore != nil {
		if statsAfter, err := j.db.GetStats(); err == nil {
			j.log.Info().
				Int64("size_before_bytes", statsBefore.SizeBytes).
				Int64("size_after_bytes", statsAfter.SizeBytes).
				Msg("VACUUM completed")
		}
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Database maintenance completed")

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *MaintenanceJob) Name() string { return "db_maintenance" }
