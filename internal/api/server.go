// Package api provides the HTTP API server and handlers for the recipe server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/recipe-server/internal/metrics"
	"github.com/listenupapp/recipe-server/internal/ratelimit"
	"github.com/listenupapp/recipe-server/internal/store"
)

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateBurst      int
	MaxUploadBytes int64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	storage  *StorageServices
	metrics  *metrics.Metrics
	limiter  *ratelimit.KeyedRateLimiter
	opts     Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	storage *StorageServices,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		store:    st,
		services: services,
		storage:  storage,
		metrics:  m,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if opts.RateLimitRPS > 0 && opts.RateBurst > 0 {
		s.limiter = ratelimit.New(opts.RateLimitRPS, opts.RateBurst)
	}

	s.setupMiddleware()
	s.api = humachi.New(s.router, newHumaConfig())
	RegisterErrorHandler(logger)
	s.setupRoutes()

	return s
}

func newHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("Recipe API", "1.0.0")
	cfg.Info.Description = "Per-user recipes, tags and ingredients."
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	// No $schema links in response bodies.
	cfg.CreateHooks = nil
	return cfg
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by middleware.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) setupMiddleware() {
	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(rateLimitMiddleware(s.limiter, s.metrics, s.logger))
	}
	s.router.Use(s.metrics.Middleware)
	s.router.Use(authMiddleware(s.services.Auth))
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerRecipeRoutes()
	s.registerAttributeRoutes()

	// Multipart upload and static files stay on chi.
	s.router.Post(apiPrefix+"/recipes/{id}/upload-image", s.handleUploadImage)
	s.router.Get(mediaPrefix+"{file}", s.handleServeImage)
	s.router.Handle("/metrics", s.metrics.Handler())
}
