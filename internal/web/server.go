// Package web provides the HTTP server and JSON API for the fleet store.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/akoval/fleetops/internal/events"
	"github.com/akoval/fleetops/internal/fleet"
	"github.com/akoval/fleetops/internal/persist"
	"github.com/akoval/fleetops/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TelemetryProvider fetches the raw vehicle list and stat snapshots from
// the fleet-tracking provider. Satisfied by *telemetry.Client.
type TelemetryProvider interface {
	Fetch(ctx context.Context) ([]telemetry.Vehicle, []telemetry.VehicleStat, error)
}

// Options configures a Server. Zero-value fields get working defaults:
// no mirror writes, no events, no auth gate.
type Options struct {
	// Mirror receives best-effort persistence writes; nil disables them.
	Mirror persist.Mirror

	// Provider backs the telemetry sync endpoint; nil disables sync.
	Provider TelemetryProvider

	// Events receives store lifecycle events.
	Events events.Publisher

	// APIToken, when non-empty, is required as a Bearer token on every
	// /api request.
	APIToken string

	// RequestTimeout is the per-request middleware timeout.
	RequestTimeout time.Duration
}

// Server is the HTTP server for the fleet API.
type Server struct {
	store    *fleet.Store
	mirror   persist.Mirror
	provider TelemetryProvider
	events   events.Publisher
	apiToken string
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server around the given store.
func NewServer(store *fleet.Store, opts Options) *Server {
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		store:    store,
		mirror:   opts.Mirror,
		provider: opts.Provider,
		events:   opts.Events,
		apiToken: opts.APIToken,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware(opts.RequestTimeout)
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware(requestTimeout time.Duration) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.requireToken)

		// Telemetry sync
		r.Get("/samsara/sync", s.handleSync)

		// Trucks
		r.Get("/trucks", s.handleListTrucks)
		r.Post("/trucks", s.handleUpsertTruck)
		r.Put("/trucks/{id}", s.handleUpdateTruck)
		r.Delete("/trucks/{id}", s.handleDeleteTruck)

		// Trailers
		r.Get("/trailers", s.handleListTrailers)
		r.Post("/trailers", s.handleUpsertTrailer)
		r.Put("/trailers/{id}", s.handleUpdateTrailer)
		r.Delete("/trailers/{id}", s.handleDeleteTrailer)

		// Cases
		r.Get("/cases", s.handleListCases)
		r.Post("/cases", s.handleAddCase)
		r.Get("/cases/{id}", s.handleGetCase)
		r.Patch("/cases/{id}", s.handleUpdateCase)
		r.Delete("/cases/{id}", s.handleDeleteCase)
		r.Post("/cases/{id}/advance", s.handleAdvanceCase)
		r.Post("/cases/{id}/notes", s.handleAddCaseNote)
		r.Put("/cases/{id}/invoice", s.handleAttachInvoice)

		// Ledger
		r.Get("/ledger", s.handleListLedger)
		r.Post("/ledger", s.handleAddLedger)

		// Import / export / wipe
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Post("/clear", s.handleClear)

		// Settings
		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handleUpdateSettings)
	})
}

// Start begins listening for HTTP requests. Timeouts come from the
// caller so config stays in one place.
func (s *Server) Start(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireToken gates the mutation surface behind a shared Bearer token.
// With no token configured the gate is open; the real authentication
// story lives in front of this service.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.apiToken {
			respondJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error: "missing or invalid API token",
				Code:  "unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
