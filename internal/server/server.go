package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/config"
	"github.com/mohammad-safakhou/skimmer/internal/metrics"
)

type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

func New(cfg config.ServerConfig, d Digester, rec *metrics.Recorder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.HTTPErrorHandler = errorHandler(logger)

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if rec != nil {
		e.GET("/metrics", echo.WrapHandler(rec.Handler()))
	}

	sh := &SearchHandler{Digest: d, LenientDepth: cfg.LenientDepth, Logger: logger}
	sh.Register(e.Group("/api/search"))

	addr := cfg.Address
	if addr == "" {
		addr = ":10001"
	}
	return &Server{echo: e, addr: addr, logger: logger}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
