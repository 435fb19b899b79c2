package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging returns a middleware that logs every request with its
// method, route, authenticated user, status and duration.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"user_id", GetUserID(c), // empty if pre-auth
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				attrs = append(attrs, "error", err)
				if status >= 500 {
					slog.Error("Request failed", attrs...)
				} else {
					slog.Warn("Request rejected", attrs...)
				}
				return err
			}

			slog.Info("Request completed", attrs...)
			return nil
		}
	}
}
