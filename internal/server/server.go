// Package server provides the HTTP server and routing for the account
// aggregation gateway.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/cache"
	"github.com/finbridge/aqs/internal/config"
	"github.com/finbridge/aqs/internal/database"
	"github.com/finbridge/aqs/internal/events"
	"github.com/finbridge/aqs/internal/orchestrator"
	"github.com/finbridge/aqs/internal/reliability"
	"github.com/finbridge/aqs/internal/resilience"
)

// Config holds server configuration
type Config struct {
	Log           zerolog.Logger
	Config        *config.Config
	CacheDB       *database.DB
	Orchestrator  *orchestrator.Orchestrator
	Cache         *cache.SummaryCache
	Breakers      *resilience.BreakerStore
	Bus           *events.Bus
	HealthSweeper *orchestrator.HealthSweeper
	BackupService *reliability.BackupService // nil when backups are disabled
}

// Server represents the HTTP server
type Server struct {
	router          *chi.Mux
	server          *http.Server
	log             zerolog.Logger
	cfg             *config.Config
	accountHandlers *AccountHandlers
	adminHandlers   *AdminHandlers
	systemHandlers  *SystemHandlers
	eventsStream    *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		log:             cfg.Log.With().Str("component", "server").Logger(),
		cfg:             cfg.Config,
		accountHandlers: NewAccountHandlers(cfg.Orchestrator, cfg.Log),
		adminHandlers:   NewAdminHandlers(cfg.Cache, cfg.Breakers, cfg.BackupService, cfg.Log),
		systemHandlers:  NewSystemHandlers(cfg.CacheDB, cfg.Cache, cfg.Breakers, cfg.HealthSweeper, cfg.Log),
		eventsStream:    NewEventsStreamHandler(cfg.Bus, cfg.Log),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// SSE stream sits outside the write-timeout budget of normal handlers;
		// it relies on flushes and its own heartbeat.
		r.Get("/events/stream", s.eventsStream.ServeHTTP)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{accountID}", s.accountHandlers.HandleGetAccount)
			r.Post("/batch", s.accountHandlers.HandleBatch)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/breakers", s.adminHandlers.HandleBreakerStates)
			r.Delete("/cache", s.adminHandlers.HandleInvalidateAll)
			r.Delete("/cache/{accountID}", s.adminHandlers.HandleInvalidate)
			r.Post("/backup", s.adminHandlers.HandleTriggerBackup)
			r.Get("/backups", s.adminHandlers.HandleListBackups)
		})

		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)
		r.Get("/system/health", s.systemHandlers.HandleBackendHealth)
	})
}

// Router returns the configured handler. Used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.log, http.StatusOK, map[string]string{"status": "ok"})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
