package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// RequireGMKey returns middleware that admits a request only when its
// "Authorization: Bearer <key>" header matches the bcrypt hash. With an
// empty hash every request is admitted when open is true (development) and
// rejected otherwise.
func RequireGMKey(hash string, open bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if hash == "" {
				if open {
					return next(c)
				}
				return apperror.NewUnauthorized("calendar changes are disabled: no GM key configured")
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return apperror.NewUnauthorized("GM key required")
			}
			rawKey := strings.TrimPrefix(authHeader, "Bearer ")
			if rawKey == authHeader {
				return apperror.NewUnauthorized("invalid authorization format, use: Bearer <key>")
			}

			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawKey)); err != nil {
				slog.Warn("GM key rejected",
					slog.String("remote_ip", c.RealIP()),
					slog.String("path", c.Request().URL.Path),
				)
				return apperror.NewUnauthorized("invalid GM key")
			}
			return next(c)
		}
	}
}
