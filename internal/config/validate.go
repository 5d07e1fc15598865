package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
	"github.com/verte-zerg/memospeak/internal/model"
	"github.com/verte-zerg/memospeak/internal/speech"
)

// Validator checks resolved practice settings.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator that reports fields by their flag names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("flag"); name != "" {
			return name
		}
		return fld.Name
	})
	if err := v.RegisterValidation("rate_step", validateRateStep); err != nil {
		// Registration only fails for an empty tag name.
		panic(err)
	}
	return &Validator{v: v}
}

func validateRateStep(fl validator.FieldLevel) bool {
	rate := fl.Field().Float()
	steps := rate / speech.RateStep
	return math.Abs(steps-math.Round(steps)) < 1e-9
}

// Validate checks cfg and returns a VALIDATION error listing every bad field.
func (v *Validator) Validate(cfg model.Config) error {
	if err := v.v.Struct(cfg); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	fieldErrors := make(map[string]string, len(validationErrs))
	names := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
		names = append(names, e.Field())
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("--%s %s", name, fieldErrors[name]))
	}
	return apperrors.ValidationWithDetails("invalid settings: "+strings.Join(parts, "; "), fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "bcp47_language_tag":
		return "must be a BCP 47 language tag such as ru-RU"
	case "rate_step":
		return fmt.Sprintf("must be a multiple of %.2f", speech.RateStep)
	default:
		return "is invalid"
	}
}
