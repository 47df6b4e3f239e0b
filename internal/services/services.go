// Package services implements the workflows on top of store.Store. Every
// error returned from this package is an *apperr.Error.
package services

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/BorisDmv/techscribe-api/internal/apperr"
	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

// Upload is a file received with a request.
type Upload struct {
	Name string
	Body io.Reader
}

// Caller is the authenticated identity performing an operation.
type Caller struct {
	ID    string
	Roles models.Roles
}

func (c Caller) IsAdmin() bool {
	return c.Roles.Has(models.RoleAdmin)
}

// EventRecorder counts workflow transitions.
type EventRecorder interface {
	Event(name string)
}

type noEvents struct{}

func (noEvents) Event(string) {}

func eventsOrNoop(e EventRecorder) EventRecorder {
	if e == nil {
		return noEvents{}
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("category", validateCategory); err != nil {
		panic("services: failed to register category validation: " + err.Error())
	}
	return v
}

func validateCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.Category(value).Valid()
}

// check validates payload against its struct tags and reports the first
// failing field in a client-safe message.
func check(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal("validation failed", err)
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Validation(field + " is required")
	case "email":
		return apperr.Validation(field + " must be a valid email")
	case "url":
		return apperr.Validation(field + " must be a valid url")
	case "min":
		return apperr.Validation(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apperr.Validation(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "len":
		return apperr.Validation(fmt.Sprintf("%s must be %s characters", field, fe.Param()))
	case "category":
		return apperr.Validation("invalid category selected")
	default:
		return apperr.Validation(field + " is invalid")
	}
}

// storeErr maps a store failure onto the client taxonomy. notFound names the
// missing entity.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, store.ErrDuplicateEmail):
		return apperr.Conflict("Email already exists!")
	case errors.Is(err, store.ErrDuplicateUsername):
		return apperr.Conflict("Username already taken!")
	case errors.Is(err, store.ErrDuplicateSlug):
		return apperr.Conflict(slugTakenMessage)
	default:
		return apperr.Internal("internal server error", err)
	}
}
