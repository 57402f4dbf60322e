// Package rest is the HTTP boundary of the analytics service: JSON shaping,
// status codes, bearer auth, rate limiting and request metrics.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/server/config"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// ServiceName is reported by /health.
const ServiceName = "CyberSuite ML Service"

type AnomalyAPI interface {
	Detect(ctx context.Context, ev models.LoginEvent) (models.AnomalyResult, error)
	Train(ctx context.Context) (*models.TrainingMetrics, error)
	Stats(ctx context.Context) (models.Stats, error)
	RecordLogin(ctx context.Context, ev models.LoginEvent) error
}

type PasswordAPI interface {
	Analyze(ctx context.Context, pw string) models.PasswordAnalysis
}

// Metrics receives one observation per served request. *metrics.Metrics
// implements it.
type Metrics interface {
	Request(route string, code int, d time.Duration)
	Handler() http.Handler
}

type Server struct {
	address        string
	anomalies      AnomalyAPI
	passwords      PasswordAPI
	metrics        Metrics
	logger         logging.Logger
	jwtSecret      []byte
	requestTimeout time.Duration
	limiter        *rate.Limiter
}

func NewServer(cfg *config.Config, l logging.Logger, a AnomalyAPI, p PasswordAPI, m Metrics) *Server {
	return &Server{
		address:        cfg.HTTPAddr,
		anomalies:      a,
		passwords:      p,
		metrics:        m,
		logger:         l.With("module", "http_server"),
		jwtSecret:      []byte(cfg.SecretKey),
		requestTimeout: cfg.RequestTimeout,
		limiter:        rate.NewLimiter(rate.Limit(cfg.PasswordRateLimit), cfg.PasswordRateBurst),
	}
}

// Router builds the route tree. Training is kept out of the request timeout
// group because it is bounded by its own, longer timeout.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.requestTimeout > 0 {
			r.Use(middleware.Timeout(s.requestTimeout))
		}

		r.With(s.rateLimit).Post("/analyze-password", s.handleAnalyzePassword)
		r.With(s.requireRole(roleUser)).Post("/detect-anomaly", s.handleDetectAnomaly)
		r.With(s.requireRole(roleUser)).Get("/stats", s.handleStats)
		r.With(s.requireRole(roleAdmin)).Post("/login-logs", s.handleRecordLogin)
	})

	r.With(s.requireRole(roleAdmin)).Post("/train", s.handleTrain)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
