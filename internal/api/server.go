// Package api provides the HTTP API server and handlers for the Shelfkeeper catalog.
package api

import (
	"io"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfkeeper/shelfkeeper-server/internal/auth"
	"github.com/shelfkeeper/shelfkeeper-server/internal/http/response"
	"github.com/shelfkeeper/shelfkeeper-server/internal/ratelimit"
)

// Version is reported in the OpenAPI document and the service index.
const Version = "1.0.0"

const adminPrefix = "/admin"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins []string
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	admin    *auth.AdminGuard
	limiter  *ratelimit.KeyedRateLimiter
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// limiter may be nil to disable admin rate limiting.
func NewServer(services *Services, admin *auth.AdminGuard, limiter *ratelimit.KeyedRateLimiter, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services: services,
		admin:    admin,
		limiter:  limiter,
		router:   router,
		logger:   logger,
	}

	s.setupMiddleware(opts)

	s.api = humachi.New(router, newHumaConfig())
	RegisterErrorHandler()

	s.registerIndexRoutes()
	s.registerHealthRoutes()
	s.registerAdminBookRoutes()
	s.registerCatalogRoutes()
	s.registerLibraryRoutes()
	s.registerGuestRoutes()

	router.NotFound(response.NotFound(logger))
	router.MethodNotAllowed(response.MethodNotAllowed(logger))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// newHumaConfig builds the OpenAPI config with jsoniter handling JSON bodies.
func newHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("Shelfkeeper API", Version)
	cfg.Info.Description = "Book catalog with per-user reading libraries"

	jsonFormat := huma.Format{
		Marshal: func(w io.Writer, v any) error {
			return json.NewEncoder(w).Encode(v)
		},
		Unmarshal: json.Unmarshal,
	}
	formats := maps.Clone(cfg.Formats)
	formats["application/json"] = jsonFormat
	formats["json"] = jsonFormat
	cfg.Formats = formats

	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"adminToken": {
			Type: "apiKey",
			In:   "header",
			Name: "X-Admin-Token",
		},
	}
	return cfg
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.StripSlashes)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Admin-Token", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(RateLimitMiddleware(s.limiter, adminPrefix, s.logger))
}

// requestLogger logs one line per request with its outcome.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
