package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is used by load balancers and monitoring to check that the process
// is up.  It is not behind the client version gate.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
