// Package server exposes the conversion engine and the bounds calculator as
// a JSON HTTP API with health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lululau/jcal/internal/bounds"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/months"
)

var (
	conversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jcal_conversions_total",
			Help: "Total number of date conversions served",
		},
		[]string{"direction"},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jcal_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)
)

func init() {
	prometheus.MustRegister(conversionsTotal)
	prometheus.MustRegister(requestsTotal)
}

// Options configures a Server.
type Options struct {
	Addr     string
	Bounds   bounds.Config
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
	// Language is used when a request has no lang parameter.
	Language string
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	Burst     int
}

// Server is the jcal HTTP API.
type Server struct {
	router   chi.Router
	addr     string
	cfg      bounds.Config
	loc      *time.Location
	now      func() time.Time
	lang     string
	logger   *zap.Logger
	limiter  *limiterStore
	calc     atomic.Pointer[bounds.Calculator]
	shutdown time.Duration
}

// New creates a Server. The bounds configuration is validated up front.
func New(opts Options) (*Server, error) {
	s := &Server{
		addr:     opts.Addr,
		cfg:      opts.Bounds,
		loc:      opts.Location,
		now:      opts.Now,
		lang:     opts.Language,
		logger:   opts.Logger,
		shutdown: 10 * time.Second,
	}
	if s.addr == "" {
		s.addr = ":8080"
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.lang == "" {
		s.lang = months.DefaultLanguage
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if opts.RateLimit > 0 {
		s.limiter = newLimiterStore(opts.RateLimit, max(opts.Burst, 1))
	}

	calc, err := s.newCalculator()
	if err != nil {
		return nil, err
	}
	s.calc.Store(calc)

	s.setupRoutes()
	return s, nil
}

func (s *Server) newCalculator() (*bounds.Calculator, error) {
	return bounds.New(s.cfg, bounds.WithNow(s.now), bounds.WithLocation(s.loc))
}

// calculator returns bounds computed for today, rebuilding them when the
// date has moved on since they were made.
func (s *Server) calculator() (*bounds.Calculator, error) {
	calc := s.calc.Load()
	today, err := jalali.FromTime(s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	if calc.Today() == today {
		return calc, nil
	}
	fresh, err := s.newCalculator()
	if err != nil {
		return nil, err
	}
	s.calc.CompareAndSwap(calc, fresh)
	s.logger.Info("recomputed selection bounds", zap.Stringer("today", fresh.Today()))
	return fresh, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	if s.limiter != nil {
		r.Use(s.limiter.middleware)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/convert/jalali", s.handleToJalali)
		r.Get("/convert/gregorian", s.handleToGregorian)
		r.Get("/today", s.handleToday)
		r.Get("/leap/{year}", s.handleLeap)
		r.Get("/months/{month}", s.handleMonthName)
		r.Get("/bounds", s.handleBounds)
		r.Get("/bounds/{year}", s.handleYearBounds)
		r.Get("/bounds/{year}/{month}", s.handleMonthBounds)
	})

	s.router = r
}

// loggingMiddleware logs requests and counts them per route pattern.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestsTotal.WithLabelValues(route, fmt.Sprint(status)).Inc()

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// StartWithContext serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
