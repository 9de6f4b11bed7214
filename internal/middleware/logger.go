package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/customer-auth/internal/logging"
)

// RequestLogger logs the start and the outcome of each request.  Install it
// after RequestID so the records carry the request id.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			start := time.Now()
			log.Info(ctx, "request started", "method", c.Request().Method)

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}
			log.Info(ctx, "request finished",
				"method", c.Request().Method,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
