// Package middleware provides the Echo middleware of the almanac server.
// Global middleware is registered in internal/app/app.go; the GM key guard
// is applied per route by the calendar plugin.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger returns middleware that logs every request once it has
// completed, at a level chosen by the response status.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Int64("bytes", res.Size),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if req.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", req.URL.RawQuery))
			}
			if id := calendarID(c); id != "" {
				attrs = append(attrs, slog.String("calendar", id))
			}

			level := slog.LevelInfo
			switch {
			case res.Status >= 500:
				level = slog.LevelError
			case res.Status >= 400:
				level = slog.LevelWarn
			}
			slog.LogAttrs(req.Context(), level, "request", attrs...)

			return nil
		}
	}
}

// calendarID returns the :id route parameter, if any.
func calendarID(c echo.Context) string {
	for i, name := range c.ParamNames() {
		if name == "id" && i < len(c.ParamValues()) {
			return c.ParamValues()[i]
		}
	}
	return ""
}
