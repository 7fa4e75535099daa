package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/events"
	"github.com/finbridge/aqs/internal/registry"
)

// healthProbeTimeout bounds one backend probe during a sweep.
const healthProbeTimeout = 5 * time.Second

// HealthSweeper probes every registered backend on a schedule and keeps the
// latest verdicts for the status endpoint.
type HealthSweeper struct {
	registry *registry.Registry
	bus      *events.Bus
	log      zerolog.Logger

	mu      sync.RWMutex
	results map[string]bool
}

// NewHealthSweeper creates a sweeper over the given registry.
func NewHealthSweeper(reg *registry.Registry, bus *events.Bus, log zerolog.Logger) *HealthSweeper {
	return &HealthSweeper{
		registry: reg,
		bus:      bus,
		log:      log.With().Str("component", "health_sweeper").Logger(),
		results:  make(map[string]bool),
	}
}

// Name returns the job name for scheduling and logging.
func (h *HealthSweeper) Name() string { return "backend_health_sweep" }

// Run probes all backends. Probes run sequentially; a sweep is not on any
// request path and a few seconds of wall time does not matter here.
func (h *HealthSweeper) Run() error {
	for _, adapter := range h.registry.All() {
		ctx, cancel := context.WithTimeout(context.Background(), healthProbeTimeout)
		healthy := adapter.HealthCheck(ctx)
		cancel()

		h.mu.Lock()
		h.results[adapter.Name()] = healthy
		h.mu.Unlock()

		if !healthy {
			h.log.Warn().Str("backend", adapter.Name()).Msg("Backend health probe failed")
		}
		if h.bus != nil {
			h.bus.Publish(&events.BackendHealthData{Backend: adapter.Name(), Healthy: healthy})
		}
	}
	return nil
}

// Snapshot returns the latest probe verdicts keyed by backend name. Backends
// not yet probed are absent.
func (h *HealthSweeper) Snapshot() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]bool, len(h.results))
	for name, healthy := range h.results {
		out[name] = healthy
	}
	return out
}
