package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/cache"
	"github.com/finbridge/aqs/internal/reliability"
	"github.com/finbridge/aqs/internal/resilience"
)

// AdminHandlers serves the operator endpoints: cache invalidation, breaker
// inspection and backup control.
type AdminHandlers struct {
	cache    *cache.SummaryCache
	breakers *resilience.BreakerStore
	backup   *reliability.BackupService
	log      zerolog.Logger
}

// NewAdminHandlers creates the operator endpoint handlers. backup may be nil
// when backups are disabled.
func NewAdminHandlers(summaryCache *cache.SummaryCache, breakers *resilience.BreakerStore, backup *reliability.BackupService, log zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		cache:    summaryCache,
		breakers: breakers,
		backup:   backup,
		log:      log.With().Str("component", "admin_handlers").Logger(),
	}
}

// HandleBreakerStates serves GET /api/admin/breakers.
func (h *AdminHandlers) HandleBreakerStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"breakers": h.breakers.States(),
	})
}

// HandleInvalidate serves DELETE /api/admin/cache/{accountID}.
func (h *AdminHandlers) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		writeError(w, h.log, http.StatusBadRequest, "account identifier is required")
		return
	}

	if err := h.cache.Invalidate(accountID); err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Cache invalidation failed")
		writeError(w, h.log, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.log.Info().Str("account_id", accountID).Msg("Cache entry invalidated")
	writeJSON(w, h.log, http.StatusOK, map[string]string{
		"status":    "invalidated",
		"accountId": accountID,
	})
}

// HandleInvalidateAll serves DELETE /api/admin/cache.
func (h *AdminHandlers) HandleInvalidateAll(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.InvalidateAll(); err != nil {
		h.log.Error().Err(err).Msg("Full cache invalidation failed")
		writeError(w, h.log, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.log.Info().Msg("Cache fully invalidated")
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "invalidated"})
}

// HandleTriggerBackup serves POST /api/admin/backup.
func (h *AdminHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeError(w, h.log, http.StatusConflict, "backups are not configured")
		return
	}

	h.log.Info().Msg("Manual backup triggered")
	if err := h.backup.CreateAndUploadBackup(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		writeError(w, h.log, http.StatusInternalServerError, "backup failed: "+err.Error())
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "completed"})
}

// HandleListBackups serves GET /api/admin/backups.
func (h *AdminHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeError(w, h.log, http.StatusConflict, "backups are not configured")
		return
	}

	backups, err := h.backup.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeError(w, h.log, http.StatusInternalServerError, "failed to list backups")
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{"backups": backups})
}
