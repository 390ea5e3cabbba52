// Package server exposes the layout worker contract over HTTP.
//
// Routes:
//
//	POST /v1/layout   LayoutRequest  → LayoutResponse
//	POST /v1/check    CheckRequest   → CheckResponse
//	POST /v1/render   LayoutRequest  → image (?format=svg|png|pdf|dot|json)
//	GET  /healthz
//
// The /v1 routes share one token-bucket rate limiter.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/matzehuels/lineage/pkg/pipeline"
)

// Defaults for Config.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultRate         = 20.0
	DefaultBurst        = 40
	DefaultMaxBodyBytes = 32 << 20
)

// Config configures a Server.
type Config struct {
	Addr string
	// Rate is the sustained request rate per second for /v1 routes.
	// Negative disables limiting.
	Rate         float64
	Burst        int
	MaxBodyBytes int64
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Rate == 0 {
		c.Rate = DefaultRate
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	limiter *rate.Limiter
	cfg     Config
	router  chi.Router
	server  *http.Server
}

// New creates a server that answers requests with runner.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		runner: runner,
		logger: logger,
		cfg:    cfg,
	}
	if cfg.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logging)
	r.Use(s.recovery)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(s.limitBody)
		r.Post("/layout", s.handleLayout)
		r.Post("/check", s.handleCheck)
		r.Post("/render", s.handleRender)
	})
	return r
}

// Handler returns the fully-wrapped http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("listening", "addr", s.cfg.Addr, "rate", s.cfg.Rate)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
