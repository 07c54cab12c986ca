package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	RegisterValidation(tag string, fn validator.Func) error
}

// FieldError describes one failed rule in a validated struct.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is returned (wrapped in a BadRequest AppError) when validation fails.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, "; ")
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "is too short",
	"max":      "is too long",
	"gte":      "must not be negative",
	"datetime": "must be a date in YYYY-MM-DD format",
	"oneof":    "has an unsupported value",

	"startswith":      "has an unsupported format",
	"incident_status": "is not a known incident status",
	"role":            "is not a known role",
}

type validate struct {
	v *validator.Validate
}

// New returns a validator that reports fields by their json names.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &validate{v: v}
}

func (v *validate) RegisterValidation(tag string, fn validator.Func) error {
	return v.v.RegisterValidation(tag, fn)
}

func (v *validate) Validate(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.BadRequest("invalid input", err)
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %s validation", fe.Tag())
		}
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fmt.Sprintf("%s %s", fe.Field(), msg),
		})
	}
	return apperrors.BadRequest("validation failed", out)
}
