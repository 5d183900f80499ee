// Package server exposes a suggestion backend over HTTP.
//
// Routes:
//
//	GET /v1/suggest?q=<prefix>&limit=<n>   suggestions as suggest.RemoteResponse
//	GET /v1/metrics                        telemetry snapshot
//	GET /healthz                           liveness
//
// The body shape of /v1/suggest is what suggest.Remote expects, so one
// typeahead instance can use another as its backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8787"

	// MaxQueryLength bounds the q parameter in bytes.
	MaxQueryLength = 256

	// MaxLimit bounds the limit parameter.
	MaxLimit = 100

	shutdownTimeout = 5 * time.Second
)

// SnapshotSource provides telemetry for /v1/metrics.
// *telemetry.Metrics implements it.
type SnapshotSource interface {
	Snapshot() *telemetry.Snapshot
}

// Recorder receives one event per served lookup.
type Recorder interface {
	Record(ev telemetry.LookupEvent)
}

// Config configures the HTTP server.
type Config struct {
	Addr           string
	AllowedOrigins []string
	// MaxResults is the limit applied when a request has none.
	MaxResults int
	// LookupTimeout bounds each backend call. Zero means no bound.
	LookupTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables /v1/metrics and lookup recording.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.snapshots = m
			s.recorder = m
		}
	}
}

// WithSnapshotSource sets the /v1/metrics source.
func WithSnapshotSource(src SnapshotSource) Option {
	return func(s *Server) {
		s.snapshots = src
	}
}

// WithRecorder sets the lookup event recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// Server serves suggestions over HTTP.
type Server struct {
	lookup    suggest.Lookup
	cfg       Config
	logger    *slog.Logger
	snapshots SnapshotSource
	recorder  Recorder
	engine    *gin.Engine
	started   time.Time
}

// New creates a server around lookup.
func New(lookup suggest.Lookup, cfg Config, opts ...Option) (*Server, error) {
	if lookup == nil {
		return nil, errors.New("server: nil lookup")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = suggest.DefaultMaxResults
	}

	s := &Server{
		lookup:  lookup,
		cfg:     cfg,
		logger:  slog.Default(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	corsCfg := corsConfig(cfg.AllowedOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("server: invalid allowed origins: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsCfg))
	router.Use(requestID())
	router.Use(requestLogger(s.logger))

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/v1")
	{
		v1.GET("/suggest", s.handleSuggest)
		v1.GET("/metrics", s.handleMetrics)
	}

	s.engine = router
	return s, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// ListenAndServe listens on the configured address and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server_listening", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server_stopped")
	return nil
}
