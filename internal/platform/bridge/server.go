package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/alexiosg111/pflegedms/internal/platform/middleware"
)

// Server hosts the process-boundary API. It binds the loopback interface
// only; the listener is reachable from this machine's presentation process
// and nothing else.
type Server struct {
	echo *echo.Echo
	port int
	log  zerolog.Logger
}

func NewServer(port int, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{echo: e, port: port, log: logger}
}

// API returns the route group handlers register against.
func (s *Server) API() *echo.Group {
	return s.echo.Group("/api")
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.log.Info().Str("addr", addr).Msg("bridge listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bridge server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
