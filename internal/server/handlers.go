package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
	"github.com/finbridge/aqs/internal/orchestrator"
)

// maxBatchSize caps how many identifiers one batch request may carry.
const maxBatchSize = 500

// AccountHandlers serves the account lookup endpoints.
type AccountHandlers struct {
	orch *orchestrator.Orchestrator
	log  zerolog.Logger
}

// NewAccountHandlers creates the account endpoint handlers.
func NewAccountHandlers(orch *orchestrator.Orchestrator, log zerolog.Logger) *AccountHandlers {
	return &AccountHandlers{
		orch: orch,
		log:  log.With().Str("component", "account_handlers").Logger(),
	}
}

// HandleGetAccount serves GET /api/accounts/{accountID}.
// ?refresh=true bypasses the cache read.
func (h *AccountHandlers) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if accountID == "" {
		writeError(w, h.log, http.StatusBadRequest, "account identifier is required")
		return
	}

	forceRefresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	result := h.orch.GetAccount(r.Context(), accountID, forceRefresh)
	writeJSON(w, h.log, singleStatusCode(result), result)
}

// batchRequest is the POST /api/accounts/batch body.
type batchRequest struct {
	AccountIDs   []string `json:"accountIds"`
	ForceRefresh bool     `json:"forceRefresh,omitempty"`
}

// HandleBatch serves POST /api/accounts/batch.
func (h *AccountHandlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.AccountIDs) > maxBatchSize {
		writeError(w, h.log, http.StatusBadRequest, "too many account identifiers in one batch")
		return
	}

	requestID := uuid.New().String()
	result := h.orch.GetAccounts(r.Context(), requestID, req.AccountIDs, req.ForceRefresh)
	writeJSON(w, h.log, batchStatusCode(result.OverallStatus), result)
}

// singleStatusCode maps a per-account result onto an HTTP status. A stale body
// served during an outage is still a 200: the caller asked for data and got
// some, with the degradation flagged inside the payload.
func singleStatusCode(result domain.AccountResult) int {
	switch result.Status {
	case domain.ResultOK:
		return http.StatusOK
	case domain.ResultNotFound:
		return http.StatusNotFound
	case domain.ResultUnavailable:
		if result.Data != nil {
			return http.StatusOK
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// batchStatusCode maps the aggregate outcome onto an HTTP status.
func batchStatusCode(status domain.OverallStatus) int {
	switch status {
	case domain.OverallOK:
		return http.StatusOK
	case domain.OverallPartial:
		return http.StatusPartialContent
	default:
		return http.StatusServiceUnavailable
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, log zerolog.Logger, status int, message string) {
	writeJSON(w, log, status, map[string]string{"error": message})
}
