package validation

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kbukum/tabkit/errors"
)

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"present", "data", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New().Required("event", tt.value)
			if v.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v", v.HasErrors(), tt.wantErr)
			}
		})
	}
}

func TestValidatorRules(t *testing.T) {
	tests := []struct {
		name    string
		run     func(v *Validator)
		wantErr bool
	}{
		{"max length ok", func(v *Validator) { v.MaxLength("f", "abc", 3) }, false},
		{"max length exceeded", func(v *Validator) { v.MaxLength("f", "abcd", 3) }, true},
		{"range ok", func(v *Validator) { v.Range("f", 5, 1, 10) }, false},
		{"range below", func(v *Validator) { v.Range("f", 0, 1, 10) }, true},
		{"min ok", func(v *Validator) { v.Min("f", 1, 1) }, false},
		{"min below", func(v *Validator) { v.Min("f", -1, 0) }, true},
		{"pattern empty skipped", func(v *Validator) { v.Pattern("f", "", `^\d+$`) }, false},
		{"pattern match", func(v *Validator) { v.Pattern("f", "123", `^\d+$`) }, false},
		{"pattern mismatch", func(v *Validator) { v.Pattern("f", "12a", `^\d+$`) }, true},
		{"one of empty skipped", func(v *Validator) { v.OneOf("f", "", []string{"csv"}) }, false},
		{"one of allowed", func(v *Validator) { v.OneOf("f", "json", []string{"csv", "json"}) }, false},
		{"one of rejected", func(v *Validator) { v.OneOf("f", "xml", []string{"csv", "json"}) }, true},
		{"no empty ok", func(v *Validator) { v.NoEmpty("f", []string{"a", "b"}) }, false},
		{"no empty nil", func(v *Validator) { v.NoEmpty("f", nil) }, false},
		{"no empty blank", func(v *Validator) { v.NoEmpty("f", []string{"a", " "}) }, true},
		{"custom true", func(v *Validator) { v.Custom(true, "f", "bad") }, false},
		{"custom false", func(v *Validator) { v.Custom(false, "f", "bad") }, true},
		{"check nil", func(v *Validator) { v.Check("f", nil) }, false},
		{"check error", func(v *Validator) { v.Check("f", errors.New("bad")) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			tt.run(v)
			if v.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v (%v)", v.HasErrors(), tt.wantErr, v.Errors())
			}
		})
	}
}

func TestValidatorCheckKeepsAppErrorMessage(t *testing.T) {
	v := New().Check("encoding", apperrors.DecodeFailed("klingon", errors.New("unknown")))
	if got := v.Errors()[0].Message; strings.Contains(got, "DECODE_FAILED") {
		t.Errorf("message should not carry the code: %q", got)
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Required("name", "ok").Validate() != nil {
		t.Error("expected nil for valid input")
	}
	if err := New().Err(); err != nil {
		t.Errorf("Err() on clean validator = %v", err)
	}

	single := New().Required("event", "").Validate()
	if single == nil || single.Code != apperrors.ErrCodeInvalidSetting {
		t.Fatalf("expected INVALID_SETTING, got %v", single)
	}
	if single.Details["field"] != "event" {
		t.Errorf("field detail = %v", single.Details["field"])
	}

	multi := New().Required("name", "").Required("event", "").Validate()
	if multi == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(multi.Message, "name") || !strings.Contains(multi.Message, "event") {
		t.Errorf("expected both fields in message, got %q", multi.Message)
	}
	if fields, ok := multi.Details["fields"].([]FieldError); !ok || len(fields) != 2 {
		t.Errorf("fields detail = %#v", multi.Details["fields"])
	}
}

func TestValidatorNested(t *testing.T) {
	v := New()
	v.Nested("filter").Required("field", "")
	v.Nested("format").Nested("keep").Custom(false, "0", "empty")
	errs := v.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs[0].Field != "filter.field" || errs[1].Field != "format.keep.0" {
		t.Errorf("fields = %q, %q", errs[0].Field, errs[1].Field)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("name", "John").MaxLength("name", "John", 100).Min("retries", 3, 0)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

type busConfig struct {
	Backend string `mapstructure:"backend" validate:"omitempty,oneof=memory kafka redis"`
	Retries int    `mapstructure:"retries" validate:"gte=0,lte=10"`
}

type appConfig struct {
	Name string    `yaml:"name" validate:"required"`
	Bus  busConfig `mapstructure:"bus"`
}

func TestStructValidateValid(t *testing.T) {
	if err := Validate(appConfig{Name: "tabkit", Bus: busConfig{Backend: "kafka", Retries: 3}}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	err := Validate(appConfig{Bus: busConfig{Backend: "nats", Retries: 11}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidSetting) {
		t.Errorf("expected INVALID_SETTING, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"name: is required", "bus.backend: must be one of", "bus.retries: must be less than or equal to 10"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestStructValidateMinMax(t *testing.T) {
	type input struct {
		Code string `json:"code" validate:"required,min=3,max=10"`
	}
	if err := Validate(input{Code: "abc"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	err := Validate(input{Code: "ab"})
	if err == nil || !strings.Contains(err.Error(), "code: must be at least 3 characters") {
		t.Errorf("expected min error, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxFileSize"); got != "max_file_size" {
		t.Errorf("toSnakeCase = %q", got)
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("name", "value"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected error for empty required field")
	}
}
