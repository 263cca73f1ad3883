// Package validation reports malformed settings and configuration as
// INVALID_SETTING errors.
//
// It supports both struct tag validation (go-playground/validator) for
// configuration files and programmatic validation with error collection for
// request settings.
//
// # Struct Tag Validation
//
//	type BusConfig struct {
//	    Backend string `mapstructure:"backend" validate:"omitempty,oneof=memory kafka redis"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("event", s.Event)
//	v.Nested("format").NoEmpty("keep", s.Format.Keep)
//	err := v.Err()
package validation
