package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/middleware"
	"github.com/iliyamo/customer-auth/internal/model"
	"github.com/iliyamo/customer-auth/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Svc *service.AuthService
	Log logging.Logger
}

func NewAuthHandler(svc *service.AuthService, log logging.Logger) *AuthHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthHandler{Svc: svc, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordReq struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required"`
	VerificationCode string `json:"verification_code" validate:"required"`
}

type userData struct {
	User model.UserView `json:"user"`
}

type loginData struct {
	User model.UserView `json:"user"`
	JWT  string         `json:"jwt"`
}

// normalizer is implemented by request DTOs that clean up input before
// validation.
type normalizer interface {
	normalize()
}

func (r *loginReq) normalize()          { r.Email = strings.TrimSpace(r.Email) }
func (r *forgotPasswordReq) normalize() { r.Email = strings.TrimSpace(r.Email) }
func (r *resetPasswordReq) normalize()  { r.Email = strings.TrimSpace(r.Email) }

// bindAndValidate decodes the JSON body into dst, normalizes it and runs the
// validator.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return invalidBody()
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(dst)
}

// Login: POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Svc.Login(ctx, req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logging.Client(h.Log).Warn(ctx, "login failed")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidLogin})
	}
	if err != nil {
		return err
	}

	token, _, err := h.Svc.IssueSessionToken(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": loginData{User: u.View(), JWT: token}})
}

// ForgotPassword: POST /auth/forgot_password.  The response does not reveal
// whether the address belongs to an account.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgResetRequested})
}

// ResetPassword: POST /auth/reset_password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	err := h.Svc.ConfirmPasswordReset(ctx, req.Email, req.Password, req.VerificationCode)
	if errors.Is(err, service.ErrInvalidResetCode) {
		logging.Client(h.Log).Warn(ctx, "password reset rejected")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidReset})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgPasswordReset})
}

// CurrentUser: GET /auth/
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	id, ok := middleware.CustomerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Svc.UserByID(ctx, id)
	if errors.Is(err, service.ErrRecordNotFound) {
		// Token outlived its account.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": userData{User: u.View()}})
}

// UpdateCurrentUser: PATCH /auth/.  Only the language may be changed; any
// other field in the body is rejected.
func (h *AuthHandler) UpdateCurrentUser(c echo.Context) error {
	id, ok := middleware.CustomerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}

	fields, err := decodeObject(c)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return service.NewValidationError(service.FieldLanguage, "This field is required.")
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	verr := &service.ValidationError{}
	for _, k := range keys {
		if k != service.FieldLanguage {
			verr.Add(k, "Unknown field.")
		}
	}
	var language string
	if raw, ok := fields[service.FieldLanguage]; ok {
		if err := json.Unmarshal(raw, &language); err != nil {
			verr.Add(service.FieldLanguage, "Not a valid string.")
		}
	}
	if !verr.Empty() {
		return verr
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Svc.UpdateProfileField(ctx, id, service.FieldLanguage, language)
	if errors.Is(err, service.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": userData{User: u.View()}})
}

// decodeObject reads the request body as a single JSON object.
func decodeObject(c echo.Context) (map[string]json.RawMessage, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(c.Request().Body); err != nil {
		return nil, invalidBody()
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		return nil, invalidBody()
	}
	return fields, nil
}
