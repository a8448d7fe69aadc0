// Package server exposes the tracker over HTTP with the same endpoints the
// hosted backend offers, so the CLI and the TUI can run against either.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
	"github.com/go-co-op/gocron"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Config is the server section of the config file.
type Config struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// RateLimit is requests per second per client; Burst is the bucket.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`

	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool `mapstructure:"trust_proxy" yaml:"trust_proxy"`

	// DecayAt is the daily HH:MM time streaks are reset.
	DecayAt string `mapstructure:"decay_at" yaml:"decay_at"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DefaultConfig listens on localhost:8080.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8080",
		AllowedOrigins:  []string{"*"},
		RateLimit:       10,
		RateBurst:       30,
		DecayAt:         "00:05",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Deps are the services the handlers call.
type Deps struct {
	Store    *store.Store
	Tracker  *tracker.Tracker
	Quiz     *quiz.Service
	Ranking  *ranking.Service
	Accounts *account.Service

	// Location is the time zone of the daily jobs; it should match the
	// tracker's calendar days. Nil means time.Local.
	Location *time.Location
}

// Server serves the HTTP API.
type Server struct {
	cfg      Config
	deps     Deps
	catalog  *catalog.Catalog
	log      zerolog.Logger
	metrics  *metrics
	registry *prometheus.Registry
	limiter  *clientLimiter
	router   *mux.Router
}

// New builds a Server and its routes.
func New(cfg Config, deps Deps) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		deps:     deps,
		catalog:  deps.Tracker.Catalog(),
		log:      logger.Component("server"),
		metrics:  newMetrics(reg),
		registry: reg,
		limiter:  newClientLimiter(cfg.RateLimit, cfg.RateBurst),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"Content-Length"}),
	)
	return cors(s.router)
}

// Run listens on cfg.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles connections on ln and runs the background jobs until ctx
// is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	sched, err := s.startJobs()
	if err != nil {
		ln.Close()
		return err
	}
	defer sched.Stop()

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  2 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// startJobs resets lapsed streaks once, then schedules the daily reset
// and limiter cleanup.
func (s *Server) startJobs() (*gocron.Scheduler, error) {
	loc := s.deps.Location
	if loc == nil {
		loc = time.Local
	}
	s.decayStreaks()

	sched := gocron.NewScheduler(loc)
	if _, err := sched.Every(1).Day().At(s.cfg.DecayAt).Do(s.decayStreaks); err != nil {
		return nil, fmt.Errorf("schedule streak decay: %w", err)
	}
	if _, err := sched.Every(1).Minute().Do(s.limiter.cleanup, 3*time.Minute); err != nil {
		return nil, fmt.Errorf("schedule limiter cleanup: %w", err)
	}
	sched.StartAsync()
	return sched, nil
}

func (s *Server) decayStreaks() {
	n, err := s.deps.Tracker.DecayStreaks(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("streak decay failed")
		return
	}
	s.metrics.streakResets.Add(float64(n))
}
