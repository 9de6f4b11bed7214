package middleware

import "github.com/labstack/echo/v4"

// Context keys set by Authenticate.
const (
	KeyCustomerID      = "customer_id"
	KeyIsAuthenticated = "is_authenticated"
)

// CustomerID returns the authenticated customer id stored by Authenticate.
// ok is false for anonymous requests.
func CustomerID(c echo.Context) (id string, ok bool) {
	if auth, _ := c.Get(KeyIsAuthenticated).(bool); !auth {
		return "", false
	}
	id, ok = c.Get(KeyCustomerID).(string)
	return id, ok && id != ""
}
