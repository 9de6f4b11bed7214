// Package service holds the authentication and credential recovery logic.
// It depends on storage and notification only through the interfaces
// declared here.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/model"
	"github.com/iliyamo/customer-auth/internal/repository"
	"github.com/iliyamo/customer-auth/internal/utils"
)

// UserStore is the persistence contract AuthService needs.  Lookups return
// repository.ErrNotFound when nothing matches.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, customerID string) (*model.User, error)
	CreateMany(ctx context.Context, users []*model.User) error
	SaveVerificationCode(ctx context.Context, u *model.User) error
	// CompletePasswordReset writes u's credentials and clears its reset code
	// only if the stored code still equals code and is unexpired at now;
	// otherwise it returns repository.ErrStaleResetCode.
	CompletePasswordReset(ctx context.Context, u *model.User, code string, now time.Time) error
	UpdateLanguage(ctx context.Context, customerID, language string) error
	// UpdatePassword writes u's password hash and salt.
	UpdatePassword(ctx context.Context, u *model.User) error
}

// Notifier delivers an e-mail out of band.  SendAsync must not block on
// delivery and has no failure mode visible to the caller.
type Notifier interface {
	SendAsync(email, subject, body string)
}

// Options tunes AuthService.
type Options struct {
	TokenTTL      time.Duration // session token lifetime; utils.DefaultTokenTTL when zero
	CodeTTL       time.Duration // reset code lifetime; utils.DefaultCodeTTL when zero
	LogResetCodes bool          // include raw reset codes in logs (development only)
}

// Password reset e-mail content.
const (
	ResetEmailSubject = "Password Reset"
	resetEmailBody    = "Use this verification code to reset your password: %s"
)

// Profile fields a user may change through UpdateProfileField.
const FieldLanguage = "language"

// AuthService orchestrates login, session resolution, password reset and
// profile updates.
type AuthService struct {
	users    UserStore
	hasher   *utils.PasswordHasher
	tokens   *utils.TokenService
	codes    *utils.VerificationCodes
	notifier Notifier
	log      logging.Logger
	opts     Options
}

// NewAuthService wires an AuthService.  A nil logger discards output.
func NewAuthService(users UserStore, hasher *utils.PasswordHasher, tokens *utils.TokenService,
	codes *utils.VerificationCodes, notifier Notifier, log logging.Logger, opts Options) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = utils.DefaultTokenTTL
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = utils.DefaultCodeTTL
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		codes:    codes,
		notifier: notifier,
		log:      log,
		opts:     opts,
	}
}

// Login authenticates a user by e-mail and password.  Unknown e-mail and
// wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.hasher.VerifyDummy(password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.VerifyPassword(u, password) {
		return nil, ErrInvalidCredentials
	}
	if utils.IsLegacyCredential(u) {
		s.upgradePassword(ctx, u, password)
	}
	return u, nil
}

// upgradePassword rehashes imported legacy credentials after a successful
// login.  Failure is logged only; the legacy pair keeps working.
func (s *AuthService) upgradePassword(ctx context.Context, u *model.User, password string) {
	upgraded := *u
	if err := s.hasher.SetPassword(&upgraded, password); err != nil {
		s.log.Warn(ctx, "rehash legacy password failed", "customer_id", u.CustomerID, "error", err)
		return
	}
	if err := s.users.UpdatePassword(ctx, &upgraded); err != nil {
		s.log.Warn(ctx, "save rehashed password failed", "customer_id", u.CustomerID, "error", err)
		return
	}
	*u = upgraded
}

// IssueSessionToken returns a signed session token for u and its expiry.
func (s *AuthService) IssueSessionToken(u *model.User) (string, time.Time, error) {
	tok, err := s.tokens.Issue(u.CustomerID, s.opts.TokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok.Token, tok.Exp, nil
}

// ResolveSession maps a session token to its user.  An invalid token or a
// subject that no longer exists yields (nil, nil): the caller is simply
// unauthenticated.  Only storage failures are returned as errors.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	sub, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil
	}
	u, err := s.UserByID(ctx, sub)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, nil
	}
	return u, err
}

// UserByID returns the user with the given customer id.
func (s *AuthService) UserByID(ctx context.Context, customerID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// RequestPasswordReset issues a new reset code for the account behind email
// and dispatches it by e-mail.  It returns false when no account exists;
// callers must respond identically in both cases.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	u, err := s.findByEmail(ctx, email)
	if err != nil || u == nil {
		return false, err
	}

	code := s.codes.IssueCode(u, s.opts.CodeTTL)
	if err := s.users.SaveVerificationCode(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between lookup and write.
			return false, nil
		}
		return false, fmt.Errorf("save verification code: %w", err)
	}

	if s.opts.LogResetCodes {
		s.log.Debug(ctx, "verification code issued", "customer_id", u.CustomerID, "verification_code", code)
	} else {
		s.log.Info(ctx, "verification code issued", "customer_id", u.CustomerID, "expires_at", *u.VerificationCodeExpiry)
	}

	s.notifier.SendAsync(u.Email, ResetEmailSubject, fmt.Sprintf(resetEmailBody, code))
	return true, nil
}

// ConfirmPasswordReset sets a new password if code is the pending, unexpired
// reset code of the account behind email.  The code is consumed by the same
// conditional write that stores the password, so of two concurrent
// confirmations at most one succeeds.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, newPassword, code string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidResetCode
	}

	now := s.codes.Now()
	if !s.codes.ConsumeCode(u, code) {
		return ErrInvalidResetCode
	}
	if err := s.hasher.SetPassword(u, newPassword); err != nil {
		return err
	}
	err = s.users.CompletePasswordReset(ctx, u, code, now)
	switch {
	case errors.Is(err, repository.ErrStaleResetCode):
		return ErrInvalidResetCode
	case err != nil:
		return fmt.Errorf("complete password reset: %w", err)
	}
	s.log.Info(ctx, "password reset completed", "customer_id", u.CustomerID)
	return nil
}

// UpdateProfileField changes one user-editable field.  Only FieldLanguage is
// editable, and only to a value in model.ValidLanguages.
func (s *AuthService) UpdateProfileField(ctx context.Context, customerID, field, value string) (*model.User, error) {
	if field != FieldLanguage {
		return nil, NewValidationError(field, "Unknown field.")
	}
	if !model.IsValidLanguage(value) {
		return nil, NewValidationError(FieldLanguage,
			fmt.Sprintf("Invalid language. Valid languages: %s", strings.Join(model.ValidLanguages, ", ")))
	}

	err := s.users.UpdateLanguage(ctx, customerID, value)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update language: %w", err)
	}
	return s.UserByID(ctx, customerID)
}

// findByEmail returns (nil, nil) when no user has the address.
func (s *AuthService) findByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
