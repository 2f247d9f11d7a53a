package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quic-go/quic-go/http3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/zsiec/timeframe/internal/config"
	"github.com/zsiec/timeframe/internal/errors"
	"github.com/zsiec/timeframe/internal/health"
	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/internal/preset"
	"github.com/zsiec/timeframe/pkg/timecode"
)

const healthCheckInterval = 30 * time.Second

// Server serves the timecode API over HTTP/1.1 and, when a port is
// configured, HTTP/3.
type Server struct {
	config        *config.Config
	router        *mux.Router
	httpServer    *http.Server
	http3Server   *http3.Server
	metricsServer *http.Server
	logger        *logrus.Logger
	redis         redis.UniversalClient
	presets       preset.Store
	defaultRate   timecode.Framerate
	healthMgr     *health.Manager
	errorHandler  *errors.ErrorHandler
	limiter       *rate.Limiter
}

// New creates a server. A nil redisClient keeps presets in memory.
func New(cfg *config.Config, log *logrus.Logger, redisClient redis.UniversalClient) *Server {
	s := &Server{
		config:       cfg,
		router:       mux.NewRouter(),
		logger:       log,
		redis:        redisClient,
		defaultRate:  cfg.Timecode.Framerate(),
		healthMgr:    health.NewManager(logger.WithComponent(log, "health")),
		errorHandler: errors.NewErrorHandler(log),
	}

	if redisClient != nil {
		s.presets = preset.NewRedisStore(redisClient, cfg.Redis.PresetKey, logger.WithComponent(log, "presets"))
	} else {
		s.presets = preset.NewMemoryStore()
	}

	if rl := cfg.Server.RateLimit; rl.Enabled {
		s.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.Burst)
	}

	s.registerHealthCheckers()
	s.setupRoutes()

	return s
}

// Start serves until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 3)

	go s.healthMgr.StartPeriodicChecks(ctx, healthCheckInterval)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}
	go func() {
		s.logger.WithField("port", s.config.Server.HTTPPort).Info("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.config.Server.HTTP3Port != 0 {
		if err := s.startHTTP3Server(errCh); err != nil {
			_ = s.Shutdown()
			return err
		}
	}

	if s.config.Metrics.Enabled {
		s.startMetricsServer(errCh)
	}

	select {
	case err := <-errCh:
		_ = s.Shutdown()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

func (s *Server) startHTTP3Server(errCh chan<- error) error {
	cert, err := tls.LoadX509KeyPair(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificates: %w", err)
	}

	s.http3Server = &http3.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.HTTP3Port),
		Handler: s.router,
		TLSConfig: &tls.Config{
			MinVersion:   tls.VersionTLS13,
			NextProtos:   []string{"h3"},
			Certificates: []tls.Certificate{cert},
		},
	}

	go func() {
		s.logger.WithField("port", s.config.Server.HTTP3Port).Info("Starting HTTP/3 server")
		if err := s.http3Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http3 server: %w", err)
		}
	}()
	return nil
}

func (s *Server) startMetricsServer(errCh chan<- error) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle(s.config.Metrics.Path, promhttp.Handler())

	s.metricsServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Metrics.Port),
		Handler: metricsMux,
	}
	go func() {
		s.logger.WithField("addr", s.metricsServer.Addr).Info("Starting metrics server")
		if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()
}

// Shutdown stops every listener, waiting up to the configured shutdown
// timeout for in-flight requests.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.httpServer != nil {
		keep(s.httpServer.Shutdown(ctx))
	}
	if s.metricsServer != nil {
		keep(s.metricsServer.Shutdown(ctx))
	}
	// http3.Server.Close does not wait for requests
	if s.http3Server != nil {
		keep(s.http3Server.Close())
	}

	if firstErr != nil {
		return fmt.Errorf("failed to shutdown server: %w", firstErr)
	}
	s.logger.Info("Server shutdown complete")
	return nil
}

func (s *Server) registerHealthCheckers() {
	s.healthMgr.Register(health.NewConversionChecker())
	if s.redis != nil {
		s.healthMgr.Register(health.NewRedisChecker(s.redis))
	}
}

// GetRouter returns the router for testing.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
