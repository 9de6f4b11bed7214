package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/customer-auth/internal/logging"
)

// TokenVerifier checks a session token and returns its subject.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Authenticate resolves an optional "Authorization: Bearer <token>" header.
// It never rejects a request: a missing, malformed or invalid token leaves
// the request anonymous and RequireAuthenticated decides what to do with it.
// On success the customer id is stored under KeyCustomerID and
// KeyIsAuthenticated is set to true.
func Authenticate(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(KeyIsAuthenticated, false)

			raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}
			sub, err := tokens.Verify(raw)
			if err != nil {
				return next(c)
			}

			c.Set(KeyCustomerID, sub)
			c.Set(KeyIsAuthenticated, true)
			if info, ok := logging.RequestFrom(c.Request().Context()); ok {
				info.CustomerID = sub
			}
			return next(c)
		}
	}
}

// bearer extracts the token from an Authorization header value.  The scheme
// is matched case-insensitively.
func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
