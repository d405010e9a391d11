package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/fulfillbridge/internal/config"
	"github.com/fulfillbridge/internal/fulfillment"
)

const defaultShutdownTimeout = 10 * time.Second

// Fulfiller runs the fulfillment flow for one callback.
type Fulfiller interface {
	Fulfill(ctx context.Context, req fulfillment.Request) fulfillment.Outcome
}

// Server represents the storefront callback server
type Server struct {
	echo      *echo.Echo
	cfg       config.ServerConfig
	fulfiller Fulfiller
	logger    zerolog.Logger
}

// NewServer creates a new server with routes and middleware attached.
func NewServer(cfg config.ServerConfig, fulfiller Fulfiller, logger zerolog.Logger) (*Server, error) {
	renderer, err := NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	server := &Server{
		echo:      e,
		cfg:       cfg,
		fulfiller: fulfiller,
		logger:    logger.With().Str("component", "http").Logger(),
	}
	e.HTTPErrorHandler = server.handleError

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogRequestID:  true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: server.logRequest,
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: server.logPanic,
	}))

	server.setupRoutes()

	return server, nil
}

// setupRoutes configures all endpoints
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/success", s.handleSuccess, s.successRateLimiter()...)
}

// successRateLimiter throttles /success per client IP.
func (s *Server) successRateLimiter() []echo.MiddlewareFunc {
	if s.cfg.RateLimit <= 0 {
		return nil
	}
	burst := s.cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.cfg.RateLimit),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Warn().Str("client", identifier).Msg("rate limit exceeded on /success")
			return c.Render(http.StatusTooManyRequests, viewError, ErrorView{Error: messageTooManyRequests})
		},
	})}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.echo.Start(s.cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info().Str("address", "http://"+s.cfg.Address()).Msg("listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info().Msg("shutting down")
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	event := s.logger.Info()
	switch {
	case v.Error != nil:
		event = s.logger.Error().Err(v.Error)
	case v.Status >= http.StatusInternalServerError:
		event = s.logger.Error()
	}
	event.
		Str("request_id", v.RequestID).
		Str("method", v.Method).
		Str("uri", v.URI).
		Int("status", v.Status).
		Dur("latency", v.Latency).
		Str("remote_ip", v.RemoteIP).
		Msg("request")
	return nil
}

// logPanic is the last-resort sink for panics raised while handling a request.
func (s *Server) logPanic(c echo.Context, err error, stack []byte) error {
	s.logger.Error().
		Err(err).
		Str("uri", c.Request().RequestURI).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Bytes("stack", stack).
		Msg("recovered from panic")
	return err
}
