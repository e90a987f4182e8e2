// internal/api/server.go

// Package api is the HTTP surface of the screening service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"swipe-screening/internal/auth"
	"swipe-screening/internal/common/config"
	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/common/observability"
	"swipe-screening/internal/services/chat"
	"swipe-screening/internal/services/hiring"
	"swipe-screening/internal/services/screening"
)

// Check is a named readiness probe.
type Check struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Auth      *auth.Service
	Hiring    *hiring.Service
	Screening *screening.Service
	Chat      *chat.Service
	Obs       *observability.Observability
	Log       logger.Logger
	Checks    []Check
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

type Server struct {
	e       *echo.Echo
	deps    Deps
	cfg     config.ServerConfig
	app     config.AppConfig
	log     logger.Logger
	errs    *apperrors.ErrorHandler
	started time.Time
}

func New(cfg config.ServerConfig, app config.AppConfig, deps Deps) *Server {
	log := deps.Log.Named("api")
	s := &Server{
		e:       echo.New(),
		deps:    deps,
		cfg:     cfg,
		app:     app,
		log:     log,
		errs:    apperrors.NewErrorHandler(log),
		started: time.Now(),
	}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.HTTPErrorHandler = s.handleError
	s.e.Server.ReadTimeout = cfg.ReadTimeout
	s.e.Server.WriteTimeout = cfg.WriteTimeout
	s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", map[string]interface{}{"address": s.cfg.Address()})
	if err := s.e.Start(s.cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) routes() {
	e := s.e
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if s.cfg.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(s.cfg.BodyLimit))
	}
	e.Use(s.requestLogger())

	e.GET("/health", s.health)
	e.GET("/ready", s.ready)
	gatherer := s.deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := e.Group("/api/v1")

	// Middleware is attached per route so unmatched /api/v1 paths stay 404.
	authed := []echo.MiddlewareFunc{s.authenticate}
	asCandidate := []echo.MiddlewareFunc{s.authenticate, requireRole(candidateRole)}
	asHR := []echo.MiddlewareFunc{s.authenticate, requireRole(hrRole)}

	v1.POST("/auth/login", s.login)
	v1.POST("/auth/register/candidate", s.registerCandidate)
	v1.POST("/auth/register/hr", s.registerHR)
	v1.POST("/auth/logout", s.logout, authed...)

	v1.GET("/me", s.me, authed...)
	v1.GET("/jobs", s.listJobs, authed...)
	v1.GET("/conversations", s.conversations, authed...)
	v1.GET("/conversations/:id/messages", s.messages, authed...)
	v1.POST("/conversations/:id/messages", s.sendMessage, authed...)

	v1.PUT("/candidates/me/profile", s.updateProfile, asCandidate...)
	v1.POST("/jobs/:jobId/applications", s.apply, asCandidate...)
	v1.GET("/applications", s.myApplications, asCandidate...)

	v1.GET("/dashboard", s.dashboard, asHR...)
	v1.POST("/jobs/:jobId/screening", s.openSession, asHR...)
	v1.GET("/screening/:sessionId", s.sessionState, asHR...)
	v1.POST("/screening/:sessionId/input", s.sessionInput, asHR...)
	v1.POST("/screening/:sessionId/decisions", s.sessionDecide, asHR...)
	v1.POST("/screening/:sessionId/reset", s.sessionReset, asHR...)
	v1.DELETE("/screening/:sessionId", s.sessionClose, asHR...)
}
