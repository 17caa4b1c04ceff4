// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

// Package httpapi exposes the account operations as a JSON API under
// /api/auth.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/observability"
)

// Deps are the collaborators of the API.
type Deps struct {
	Service AuthService
	Issuer  auth.AccessTokenIssuer
	// Metrics is optional.
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Server serves the auth API over HTTP.
type Server struct {
	addr       string
	echo       *echo.Echo
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
	logger     *slog.Logger
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Service == nil || deps.Issuer == nil {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("service and issuer are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(observe(deps.Metrics, logger))

	h := &handlers{svc: deps.Service, metrics: deps.Metrics, logger: logger}
	g := e.Group("/api/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/google-login", h.googleLogin)
	g.POST("/refresh-token", h.refreshToken)
	g.POST("/revoke-token", h.revokeToken)
	g.POST("/forgot-password", h.forgotPassword)
	g.POST("/reset-password", h.resetPassword)
	g.POST("/send-verification-email", h.sendVerificationEmail)
	g.GET("/verify-email", h.verifyEmail)
	g.GET("/me", h.me, bearerAuth(deps.Issuer))

	return &Server{addr: addr, echo: e, logger: logger}, nil
}

// Handler returns the router for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address and serves in the background.
// The returned channel receives a serve error, if any, and is closed when
// the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("HTTPAPI_RUNNING").Errorf("http server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("HTTPAPI_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("http server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop drains in-flight requests and stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.With("operation", "shutdown_http_server").Wrap(err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
