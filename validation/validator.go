package validation

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/kbukum/tabkit/errors"
)

// Validator collects field errors and reports them as one INVALID_SETTING
// error.
type Validator struct {
	prefix string
	errors *[]FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	errs := make([]FieldError, 0)
	return &Validator{errors: &errs}
}

// Nested returns a validator that records errors under "prefix.field" into
// the receiver's error list.
func (v *Validator) Nested(prefix string) *Validator {
	return &Validator{prefix: v.name(prefix), errors: v.errors}
}

func (v *Validator) name(field string) string {
	if v.prefix == "" {
		return field
	}
	return v.prefix + "." + field
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	*v.errors = append(*v.errors, FieldError{
		Field:   v.name(field),
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(*v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return *v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
// A single error keeps its field name in the "field" detail; several are
// listed under "fields".
func (v *Validator) Validate() *apperrors.AppError {
	errs := *v.errors
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return apperrors.InvalidSetting(errs[0].Field, errs[0].Message)
	}

	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return apperrors.New(apperrors.ErrCodeInvalidSetting, strings.Join(messages, "; ")).
		WithDetail("fields", errs)
}

// Err is Validate typed as error, so a clean validator yields a nil
// interface rather than a typed nil.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength checks if a string is within max length.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// Range checks if a number is within a range.
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// Min checks if a number meets minimum value.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// Pattern checks if a non-empty string matches a regex pattern.
func (v *Validator) Pattern(field, value, pattern string) *Validator {
	if value == "" {
		return v
	}
	matched, err := regexp.MatchString(pattern, value)
	if err != nil || !matched {
		v.AddError(field, "does not match required format")
	}
	return v
}

// OneOf checks if a non-empty value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// NoEmpty checks that no element of a string list is blank.
func (v *Validator) NoEmpty(field string, values []string) *Validator {
	for _, s := range values {
		if strings.TrimSpace(s) == "" {
			v.AddError(field, "must not contain empty names")
			return v
		}
	}
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Check records err, if any, against field. An *AppError keeps only its
// message.
func (v *Validator) Check(field string, err error) *Validator {
	if err == nil {
		return v
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		v.AddError(field, appErr.Message)
		return v
	}
	v.AddError(field, err.Error())
	return v
}

// Required validates a single required field and returns an error if empty.
func Required(field, value string) error {
	return New().Required(field, value).Err()
}
