// Package controller implements the back-office business logic (service
// layer): validating input, orchestrating repository operations, writing
// the activity log and publishing events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/events"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"github.com/go-playground/validator/v10"
)

type EventProducer interface {
	Produce(eventType events.EventType, entityID uint, payload interface{})
}

// ActivityRecorder writes one activity log entry. It never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, actor models.Actor, action, details string)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks the validate tags of v and reports the first failure
// as a ValidationError.
func validateInput(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	return e.Invalid("%s", fieldMessage(fieldErrors[0]))
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return label + " must be a valid email address."
	case "gte":
		return label + " must not be negative."
	case "min":
		return label + " must be at least " + fe.Param() + " characters long."
	default:
		return label + " is not valid."
	}
}

// wrap prefixes err with op, passing taxonomy errors through unchanged so
// callers can still match them.
func wrap(op string, err error) error {
	if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
