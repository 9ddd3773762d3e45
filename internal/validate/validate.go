// Package validate wraps go-playground/validator with the condition enums and
// conversion to validation errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/models"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// get returns the process-wide validator, registering custom tags on first use.
func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		mustRegister(v, "surface", models.SurfaceConditions)
		mustRegister(v, "fixture", models.FixtureConditions)
		mustRegister(v, "window", models.WindowConditions)
		mustRegister(v, "door", models.DoorConditions)

		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, allowed []models.Condition) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, models.Condition(fl.Field().String()))
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
	}
}

// Struct validates s and returns an apperr validation error listing every failing field.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apperr.Validation("Validation failed", details...)
}

// Var validates a single value against a tag expression.
func Var(field string, value any, tag string) error {
	err := get().Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, field+" "+message(fe))
	}
	return apperr.Validation("Validation failed", details...)
}

func describe(fe validator.FieldError) string {
	// Namespace starts with the struct name, drop it.
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	return path + " " + message(fe)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "surface":
		return allowed(models.SurfaceConditions)
	case "fixture":
		return allowed(models.FixtureConditions)
	case "window":
		return allowed(models.WindowConditions)
	case "door":
		return allowed(models.DoorConditions)
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func allowed(values []models.Condition) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return "must be one of: " + strings.Join(names, ", ")
}
