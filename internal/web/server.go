package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chatmate/internal/domain"
	"chatmate/internal/pipeline"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	healthPath     = "/healthz"
	bodyLimit      = "2M"
	defaultTimeout = 2 * time.Minute
	shutdownGrace  = 10 * time.Second
)

// Runner executes one summarize request.
type Runner interface {
	Run(ctx context.Context, req domain.Request) (pipeline.Result, error)
}

type Server struct {
	echo    *echo.Echo
	runner  Runner
	timeout time.Duration
	log     *slog.Logger
}

func New(runner Runner, requestTimeout time.Duration, log *slog.Logger) (*Server, error) {
	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	if requestTimeout <= 0 {
		requestTimeout = defaultTimeout
	}

	s := &Server{
		echo:    echo.New(),
		runner:  runner,
		timeout: requestTimeout,
		log:     log,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == healthPath
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.InfoContext(c.Request().Context(), "HTTP request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.Secure())

	e.GET("/", s.handleIndex)
	e.POST("/summarize", s.handleSummarize)
	e.POST("/download", s.handleDownload)
	e.GET(healthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	return s, nil
}

// ServeHTTP lets tests drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	s.log.InfoContext(ctx, "HTTP server is stopped")

	return nil
}
