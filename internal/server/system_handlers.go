package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/finbridge/aqs/internal/cache"
	"github.com/finbridge/aqs/internal/database"
	"github.com/finbridge/aqs/internal/orchestrator"
	"github.com/finbridge/aqs/internal/resilience"
)

// SystemHandlers serves the system status endpoint.
type SystemHandlers struct {
	cacheDB   *database.DB
	cache     *cache.SummaryCache
	breakers  *resilience.BreakerStore
	health    *orchestrator.HealthSweeper
	startedAt time.Time
	log       zerolog.Logger
}

// SystemStatusResponse is the GET /api/system/status payload.
type SystemStatusResponse struct {
	Status        string                      `json:"status"`
	UptimeSeconds int64                       `json:"uptime_seconds"`
	GoVersion     string                      `json:"go_version"`
	CPUPercent    float64                     `json:"cpu_percent"`
	RAMPercent    float64                     `json:"ram_percent"`
	CacheEntries  int64                       `json:"cache_entries"`
	CacheSizeMB   float64                     `json:"cache_size_mb"`
	Breakers      map[string]resilience.State `json:"breakers"`
	Backends      map[string]bool             `json:"backends"`
}

// NewSystemHandlers creates the system status handlers.
func NewSystemHandlers(cacheDB *database.DB, summaryCache *cache.SummaryCache, breakers *resilience.BreakerStore, health *orchestrator.HealthSweeper, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		cacheDB:   cacheDB,
		cache:     summaryCache,
		breakers:  breakers,
		health:    health,
		startedAt: time.Now(),
		log:       log.With().Str("component", "system_handlers").Logger(),
	}
}

// HandleSystemStatus returns gateway and host health in one snapshot.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        h.overallStatus(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		GoVersion:     runtime.Version(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		CacheEntries:  h.cache.Count(),
		Breakers:      h.breakers.States(),
		Backends:      h.health.Snapshot(),
	}

	if stats, err := h.cacheDB.GetStats(); err == nil {
		response.CacheSizeMB = float64(stats.SizeBytes) / 1024 / 1024
	}

	writeJSON(w, h.log, http.StatusOK, response)
}

// HandleBackendHealth returns the latest health sweep verdict per backend.
func (h *SystemHandlers) HandleBackendHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"backends": h.health.Snapshot(),
	})
}

// overallStatus is "degraded" while any breaker is open or any probed backend
// is down, "healthy" otherwise.
func (h *SystemHandlers) overallStatus() string {
	for _, state := range h.breakers.States() {
		if state == resilience.StateOpen {
			return "degraded"
		}
	}
	for _, healthy := range h.health.Snapshot() {
		if !healthy {
			return "degraded"
		}
	}
	return "healthy"
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a 100ms sampling interval to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
