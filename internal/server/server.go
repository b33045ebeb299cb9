package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/busdesk/internal/config"
	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/ui"
)

// Version is reported by the health and discovery endpoints.
const Version = "0.1.0"

// Server is the busdesk HTTP server: the web console and its JSON API.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	svc       *console.Service
	ui        *ui.UI
	secure    bool
}

// Option configures optional Server behavior.
type Option func(*Server)

// WithSecureCookies marks browser cookies Secure, for deployments behind TLS.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secure = secure
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, svc *console.Service, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		svc:       svc,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ui = ui.New(svc, logger, ui.Config{
		Secure:       s.secure,
		DefaultOwner: cfg.Owner,
	})

	s.routes()
	return s
}

// StartMaintenance prunes delivered-but-unread notices older than maxAge
// every interval until ctx is done.
func (s *Server) StartMaintenance(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.svc.PruneNotices(ctx, maxAge)
				if err != nil {
					s.logger.Warn("prune notices", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Debug("pruned notices", "count", n)
				}
			}
		}
	}()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// UI routes (HTML)
	s.ui.RegisterRoutes(r)

	// API routes (JSON)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limitBodyMiddleware)

		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		r.Get("/summary", s.handleSummary)
		r.Get("/notices", s.handleNotices)
		r.Get("/actions", s.handleListActions)
		r.Get("/lookups", s.handleLookups)

		// Filtered, paginated list views
		r.Get("/views/{collection}", s.handleView)

		// Whole filtered tables
		r.Route("/exports/{collection}", func(r chi.Router) {
			r.Get("/", s.handleExport)
			r.Post("/", s.handlePublish)
		})

		// Row actions
		r.Route("/{collection}", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRecord)
				r.Patch("/", s.handleEditField)
				r.Delete("/", s.handleDeleteRecord)
				r.Post("/toggle", s.handleToggle)
				r.Get("/fields/{field}", s.handleFieldPrompt)
			})
		})
	})
}
