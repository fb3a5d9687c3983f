// Package api serves friends, hangs and tags as JSON over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pdxmph/hangs-tui/internal/db"
	"github.com/pdxmph/hangs-tui/internal/logger"
)

// Store is the part of *db.DB the API needs
type Store interface {
	Snapshot(ctx context.Context) (*db.Snapshot, error)
	CreateContact(ctx context.Context, in db.ContactInput) (*db.Contact, error)
	UpdateContact(ctx context.Context, id string, patch db.ContactPatch) error
	DeleteContact(ctx context.Context, id string) error
	CreateHang(ctx context.Context, in db.HangInput) (*db.Hang, error)
	UpdateHang(ctx context.Context, id string, patch db.HangPatch) error
	DeleteHang(ctx context.Context, id string) error
	CreateTag(ctx context.Context, name string) (*db.Tag, error)
}

// Options configures a Server
type Options struct {
	Logger         *logger.Logger
	AllowedOrigins []string
	Now            func() time.Time
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  Store
	router *chi.Mux
	logger *logger.Logger
	now    func() time.Time
	opts   Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		store:  store,
		router: chi.NewRouter(),
		logger: opts.Logger,
		now:    opts.Now,
		opts:   opts,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.opts.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
}

// requestLogger logs each request through the app logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealthCheck)

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", s.handleListFriends)
			r.Post("/", s.handleCreateFriend)
			r.Get("/{id}", s.handleGetFriend)
			r.Patch("/{id}", s.handleUpdateFriend)
			r.Delete("/{id}", s.handleDeleteFriend)
		})

		r.Route("/hangs", func(r chi.Router) {
			r.Get("/", s.handleListHangs)
			r.Post("/", s.handleCreateHang)
			r.Patch("/{id}", s.handleUpdateHang)
			r.Delete("/{id}", s.handleDeleteHang)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
		})
	})
}

// handleHealthCheck reports whether the database answers
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, err := s.store.Snapshot(r.Context()); err != nil {
		s.logger.WithError(err).Error("health check failed")
		Error(w, http.StatusServiceUnavailable, "database unavailable", s.logger)
		return
	}
	Success(w, map[string]string{
		"status":  "healthy",
		"latency": time.Since(start).String(),
	}, s.logger)
}
