package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/service"
)

// Response messages shared by the handlers and the error handler.
const (
	msgInternal       = "Oops! Something went wrong on our end. We're on it!"
	msgInvalidLogin   = "Invalid email or password."
	msgInvalidReset   = "Invalid email, password, or verification code."
	msgResetRequested = "If you have an account, you will receive an email with instructions to reset your password."
	msgPasswordReset  = "Password reset."
	msgUnauthorized   = "Unauthorized."
	msgUserNotFound   = "User not found."
)

// NewHTTPErrorHandler renders errors returned by handlers and middleware:
// validation failures as 400 {"errors": {...}}, echo.HTTPError with its own
// status and message, and anything else as a generic 500 that is logged
// server-side.
func NewHTTPErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	serverLog := logging.Server(log)
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ctx := c.Request().Context()

		var (
			verr    *service.ValidationError
			httpErr *echo.HTTPError
			status  int
			body    interface{}
		)
		switch {
		case errors.As(err, &verr):
			status, body = http.StatusBadRequest, echo.Map{"errors": verr.Fields}
		case errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError:
			status, body = httpErr.Code, echo.Map{"error": fmt.Sprint(httpErr.Message)}
		default:
			serverLog.Error(ctx, "unhandled error", "error", err)
			status, body = http.StatusInternalServerError, echo.Map{"error": msgInternal}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			serverLog.Error(ctx, "write error response", "error", err)
		}
	}
}

// invalidBody is returned when the request body is not the expected JSON.
func invalidBody() error {
	return service.NewValidationError("body", "Invalid JSON body.")
}
