package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/customer-auth/internal/handler"
	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/middleware"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Auth             *handler.AuthHandler
	Tokens           middleware.TokenVerifier
	Log              logging.Logger
	MinClientVersion string
}

// New returns an echo instance with validation, error rendering, request
// logging and all routes installed.
func New(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(d.Log)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	RegisterRoutes(e)
	if err := RegisterAuth(e, d); err != nil {
		return nil, err
	}
	return e, nil
}

// RegisterRoutes registers routes that need neither authentication nor a
// supported client version.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the /auth endpoints.  Unless MinClientVersion is
// empty, every one of them requires a supported X-Client-Version.  The bearer
// token is resolved for all of them but only the account endpoints require it.
func RegisterAuth(e *echo.Echo, d Deps) error {
	var mws []echo.MiddlewareFunc
	if d.MinClientVersion != "" {
		gate, err := middleware.ClientVersion(d.MinClientVersion)
		if err != nil {
			return err
		}
		mws = append(mws, gate)
	}
	mws = append(mws, middleware.Authenticate(d.Tokens))

	g := e.Group("/auth", mws...)
	g.POST("/login", d.Auth.Login)
	g.POST("/forgot_password", d.Auth.ForgotPassword)
	g.POST("/reset_password", d.Auth.ResetPassword)

	// The account resource answers on both /auth and /auth/.
	guard := middleware.RequireAuthenticated()
	for _, p := range []string{"", "/"} {
		g.GET(p, d.Auth.CurrentUser, guard)
		g.PATCH(p, d.Auth.UpdateCurrentUser, guard)
	}
	return nil
}
