// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (Redis client, Echo instance, plugin
// services) and wires the plugins into the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/config"
	"github.com/keyxmakerx/almanac/internal/middleware"
	"github.com/keyxmakerx/almanac/internal/plugins/audit"
	"github.com/keyxmakerx/almanac/internal/plugins/calendar"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Redis is the derived-result cache client. Nil when caching is off.
	Redis *redis.Client

	// Calendars is the calendar service shared by HTTP and the file loader.
	Calendars calendar.CalendarService

	// Audit holds the calendar change log.
	Audit audit.AuditService

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates an App and configures the Echo server with global middleware
// and error handling. ctx bounds background work such as rate limiter
// cleanup.
func New(ctx context.Context, cfg *config.Config, rdb *redis.Client, svc calendar.CalendarService, auditSvc audit.AuditService) *App {
	e := echo.New()

	// We log our own startup line.
	e.HideBanner = true
	e.HidePort = true

	middleware.TrustedProxies(e, cfg.TrustedProxies)

	app := &App{
		Config:    cfg,
		Redis:     rdb,
		Calendars: svc,
		Audit:     auditSvc,
		Echo:      e,
	}

	app.setupMiddleware(ctx)
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: recovery is outermost.
func (a *App) setupMiddleware(ctx context.Context) {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())
	if len(a.Config.CORSOrigins) > 0 {
		a.Echo.Use(middleware.CORS(a.Config.CORSOrigins))
	}
	a.Echo.Use(middleware.RateLimit(ctx, a.Config.RateLimit.RPS, a.Config.RateLimit.Burst))
}

// errorResponse is the JSON body of every error.
type errorResponse struct {
	Error   string            `json:"error"`
	Type    string            `json:"type,omitempty"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// errorHandler maps AppErrors and Echo's own HTTP errors to JSON responses.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	resp := errorResponse{Message: "An unexpected error occurred"}
	code := http.StatusInternalServerError

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		resp.Type = appErr.Type
		resp.Message = appErr.Message
		resp.Fields = appErr.Fields

		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		// Router 404/405 and binder errors.
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			resp.Message = msg
		} else {
			resp.Message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}
	resp.Error = http.StatusText(code)

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if err := c.JSON(code, resp); err != nil {
		slog.Warn("writing error response", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a message for status codes raised without one.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusNotFound:
		return "No such endpoint."
	case http.StatusMethodNotAllowed:
		return "This method is not allowed here."
	case http.StatusRequestEntityTooLarge:
		return "The request body is too large."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	default:
		return "An unexpected error occurred."
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting almanac server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}

// Shutdown drains in-flight requests until ctx expires.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}
