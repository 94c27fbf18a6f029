// Package web provides the HTTP server and JSON API for the roster
// import and reconciliation workflow.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pedalworks/rosterd/internal/config"
	"github.com/pedalworks/rosterd/internal/match"
	"github.com/pedalworks/rosterd/internal/notify"
	"github.com/pedalworks/rosterd/internal/source"
	"github.com/pedalworks/rosterd/internal/store"
	ownmw "github.com/pedalworks/rosterd/internal/web/middleware"
)

// Server is the HTTP server for the roster application.
type Server struct {
	cfg      *config.Config
	roster   store.Roster
	mappings store.Mappings
	fetcher  *source.Fetcher
	notifier notify.Notifier
	sessions *sessions
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the API onto its dependencies. fetcher and notifier
// may be nil; the fetch endpoint then reports itself unconfigured and
// events are dropped.
func NewServer(cfg *config.Config, rosterStore store.Roster, mappings store.Mappings,
	fetcher *source.Fetcher, notifier notify.Notifier) *Server {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	s := &Server{
		cfg:      cfg,
		roster:   rosterStore,
		mappings: mappings,
		fetcher:  fetcher,
		notifier: notifier,
		sessions: newSessions(),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if len(s.cfg.Server.TrustedProxies) > 0 {
		s.router.Use(ownmw.TrustedRealIP(s.cfg.Server.TrustedProxies))
	}
	s.router.Use(ownmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/{entity}", func(r chi.Router) {
		r.Use(s.entityCtx)

		// Import: paste/upload CSV text, or fetch from the upstream.
		r.Post("/import", s.handleImport)
		r.Post("/import/fetch", s.handleImportFetch)

		// Field mapping configuration.
		r.Get("/mapping", s.handleGetMapping)
		r.Put("/mapping", s.handlePutMapping)
		r.Post("/mapping/suggest", s.handleSuggestMapping)

		// Reconciliation workflow.
		r.Post("/reconcile", s.handleReconcile)
		r.Post("/apply", s.handleApply)
		r.Post("/discard", s.handleDiscard)

		// Roster access.
		r.Get("/roster", s.handleRoster)
		r.Post("/records/{id}/archive", s.handleArchive)
	})
}

// matchOptions builds the matcher options from configuration.
func (s *Server) matchOptions() match.Options {
	return match.Options{
		Threshold: s.cfg.Match.Threshold,
		ExactOnly: s.cfg.Match.ExactOnly,
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
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

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds baseline security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
