package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/customer-auth/internal/logging"
)

// RequestID assigns every request an id (the incoming X-Request-ID when
// present) and attaches a logging.RequestInfo to the request context so that
// all log records of the request carry it.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			info := &logging.RequestInfo{
				RequestID:  id,
				Path:       req.URL.Path,
				RemoteAddr: c.RealIP(),
			}
			c.SetRequest(req.WithContext(logging.WithRequest(req.Context(), info)))
			return next(c)
		}
	}
}
