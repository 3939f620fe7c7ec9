// Package server hosts the Gantry backend: the search and document
// endpoints the UI fetches from, a websocket channel that pushes global
// state snapshots, and the usual health and metrics surfaces.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nebulus-dev/gantry/internal/errors"
	"github.com/nebulus-dev/gantry/pkg/middleware"
	"github.com/nebulus-dev/gantry/pkg/search"
	"github.com/nebulus-dev/gantry/pkg/state"
	"github.com/nebulus-dev/gantry/pkg/vault"
)

// Config configures the server.
type Config struct {
	// Addr is the listen address (host:port).
	Addr string

	// MinQueryLength is the query length below which the search
	// endpoint returns an empty list without touching the backend.
	MinQueryLength int

	// VaultMaxSize is the per-document size limit for uploads.
	VaultMaxSize int64

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:            "localhost:8090",
		MinQueryLength:  search.DefaultMinQueryLength,
		VaultMaxSize:    10 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the Gantry HTTP/websocket backend.
type Server struct {
	config   *Config
	store    *state.Store
	searcher search.Searcher
	vault    vault.Store
	upgrader websocket.Upgrader
	logger   *slog.Logger

	router     chi.Router
	httpServer *http.Server
}

// New creates a server over the given collaborators. The store holds
// the global UI snapshot pushed to websocket clients; searcher answers
// /api/search; vaultStore may be nil to disable the document endpoints.
func New(config *Config, store *state.Store, searcher search.Searcher, vaultStore vault.Store) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if config.Addr == "" {
			config.Addr = defaults.Addr
		}
		if config.MinQueryLength == 0 {
			config.MinQueryLength = defaults.MinQueryLength
		}
		if config.VaultMaxSize == 0 {
			config.VaultMaxSize = defaults.VaultMaxSize
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		config:   config,
		store:    store,
		searcher: searcher,
		vault:    vaultStore,
		logger:   config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	s.router = s.buildRouter()
	return s
}

// The metrics middleware registers collectors against the default
// registry, so it is created once per process no matter how many
// servers exist.
var (
	metricsOnce sync.Once
	metricsMW   func(http.Handler) http.Handler
)

func metricsMiddleware() func(http.Handler) http.Handler {
	metricsOnce.Do(func() {
		metricsMW = middleware.Metrics()
	})
	return metricsMW
}

// buildRouter wires the routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metricsMiddleware())
	r.Use(middleware.OpenTelemetry(middleware.WithRequestFilter(func(req *http.Request) bool {
		return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
	})))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/state", s.handleState)
		if s.vault != nil {
			h := vault.HandlerWithLimit(s.vault, s.config.VaultMaxSize)
			r.Method(http.MethodGet, "/documents", h)
			r.Method(http.MethodPost, "/documents", h)
		}
	})

	r.Get("/ws", s.handleWebsocket)

	return r
}

// Handler returns the server's HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleSearch serves /api/search?q=. Queries below the minimum length
// return an empty list without consulting the backend, mirroring the
// client-side contract.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	w.Header().Set("Content-Type", "application/json")

	if len([]rune(q)) < s.config.MinQueryLength {
		json.NewEncoder(w).Encode([]search.Result{})
		return
	}

	results, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		s.logger.Error("search backend failed",
			"code", errors.CodeSearchFailed,
			"query", q,
			"error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	json.NewEncoder(w).Encode(results)
}

// handleState serves the current global snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state.AppStateFrom(s.store.GetState()))
}

// Start runs the server until the context is cancelled or a SIGINT/
// SIGTERM arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.config.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("shutting down", "reason", "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
