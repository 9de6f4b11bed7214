package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthenticated aborts anonymous requests with 401 before the
// handler runs.  It must be installed after Authenticate.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CustomerID(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized."})
			}
			return next(c)
		}
	}
}
