package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/customer-auth/internal/service"
)

// Validator adapts go-playground/validator to echo.Validator.  Failures are
// returned as *service.ValidationError keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: service.NewValidator()}
}

func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &service.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Not a valid email address."
	case "max":
		return fmt.Sprintf("Longer than maximum length %s.", fe.Param())
	}
	return "Invalid value."
}
