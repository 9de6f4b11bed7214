package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/customer-auth/internal/model"
	"github.com/iliyamo/customer-auth/internal/repository"
	"github.com/iliyamo/customer-auth/internal/utils"
)

// NewUser is one record of a bulk import.  Either Password (plaintext, hashed
// on import) or the pre-computed HashedPassword/Salt pair may be supplied.
// The pair is either one produced by this service or a legacy bcrypt pair
// (Salt is the bcrypt salt, HashedPassword bcrypt over the raw password).
// An account without credentials can only log in after a password reset.
type NewUser struct {
	CustomerID     string `json:"customer_id" validate:"required,max=64"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password,omitempty"`
	HashedPassword string `json:"hashed_password,omitempty" validate:"required_with=Salt"`
	Salt           string `json:"salt,omitempty" validate:"required_with=HashedPassword"`
	Country        string `json:"country" validate:"required,len=2,alpha"`
	Language       string `json:"language,omitempty"`
	IsActive       *bool  `json:"is_active,omitempty"`
}

var importValidator = NewValidator()

// NewValidator returns a validator that reports field errors under their
// JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ImportUsers validates and inserts users atomically: a single invalid or
// duplicate record aborts the whole batch.  A missing or unsupported
// language falls back to model.DefaultLanguage.
func (s *AuthService) ImportUsers(ctx context.Context, in []NewUser) (int, error) {
	users := make([]*model.User, 0, len(in))
	for i, nu := range in {
		nu.Email = strings.TrimSpace(nu.Email)
		if err := importValidator.Struct(nu); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, toValidationError(err))
		}
		u := &model.User{
			CustomerID:   nu.CustomerID,
			Email:        nu.Email,
			PasswordHash: nu.HashedPassword,
			PasswordSalt: nu.Salt,
			IsActive:     nu.IsActive == nil || *nu.IsActive,
			Country:      strings.ToUpper(nu.Country),
			Language:     nu.Language,
		}
		if nu.Password == "" && u.PasswordHash != "" && !utils.IsStoredCredential(u) {
			return 0, fmt.Errorf("record %d: %w", i+1,
				NewValidationError("hashed_password", "Unsupported hash or salt format."))
		}
		if !model.IsValidLanguage(u.Language) {
			u.Language = model.DefaultLanguage
		}
		if nu.Password != "" {
			if err := s.hasher.SetPassword(u, nu.Password); err != nil {
				return 0, fmt.Errorf("record %d: %w", i+1, err)
			}
		}
		users = append(users, u)
	}
	if len(users) == 0 {
		return 0, nil
	}
	if err := s.users.CreateMany(ctx, users); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return 0, NewValidationError("email", err.Error())
		}
		return 0, fmt.Errorf("create users: %w", err)
	}
	return len(users), nil
}

// toValidationError converts validator output into a ValidationError keyed
// by JSON field names.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), fmt.Sprintf("failed %q check", fe.Tag()))
	}
	return out
}
