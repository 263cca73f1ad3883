package ingest

import (
	"testing"

	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/record"
	"github.com/kbukum/tabkit/source"
	"github.com/kbukum/tabkit/util"
)

func TestSetting_ApplyDefaults(t *testing.T) {
	s := Setting{}
	s.ApplyDefaults()
	if s.Encoding != source.DefaultEncoding || s.Event != DefaultEvent || s.ErrorEvent != DefaultErrorEvent {
		t.Errorf("defaults = %+v", s)
	}
	if !s.HasHeader() {
		t.Error("header should default to true")
	}

	off := Setting{Header: util.Ptr(false), Event: "people", ErrorEvent: "people:error"}
	off.ApplyDefaults()
	if off.HasHeader() || off.Event != "people" || off.ErrorEvent != "people:error" {
		t.Errorf("explicit values overwritten: %+v", off)
	}
}

func TestSetting_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setting Setting
		wantErr bool
	}{
		{"empty is valid here", Setting{}, false},
		{"known encoding", Setting{Encoding: "gbk"}, false},
		{"unknown encoding is left to decoding", Setting{Encoding: "klingon"}, false},
		{"filter with field", Setting{Filter: &record.Match{Field: "country", Value: "US"}}, false},
		{"filter without field", Setting{Filter: &record.Match{Value: "US"}}, true},
		{"blank keep entry", Setting{Format: record.Rules{Keep: []string{"name", ""}}}, true},
		{"overlapping rules", Setting{Format: record.Rules{ToInt: []string{"a"}, ToString: []string{"a"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setting
			s.ApplyDefaults()
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.HasCode(err, apperrors.ErrCodeInvalidSetting) {
				t.Errorf("expected INVALID_SETTING, got %v", err)
			}
		})
	}
}

func TestSetting_BlankEventRejected(t *testing.T) {
	s := Setting{Event: " "}
	s.ApplyDefaults()
	if err := s.Validate(); err == nil {
		t.Error("expected error for blank event name")
	}
}

func TestSetting_Input(t *testing.T) {
	text := "a\n1"
	s := Setting{Text: &text, Path: "ignored.csv"}
	in := s.Input()
	if in.Text != &text || in.Path != "ignored.csv" {
		t.Errorf("Input() = %+v", in)
	}
}
