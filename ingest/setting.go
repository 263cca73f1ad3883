package ingest

import (
	"github.com/kbukum/tabkit/record"
	"github.com/kbukum/tabkit/source"
	"github.com/kbukum/tabkit/util"
	"github.com/kbukum/tabkit/validation"
)

// Default event names.
const (
	DefaultEvent      = "data"
	DefaultErrorEvent = "error"
)

// Setting configures one ingest request. Exactly one source is used: the
// first populated of Text, Data, Path and URL.
type Setting struct {
	// Text is inline CSV. A pointer to "" is a valid, empty source.
	Text *string `json:"text,omitempty"`
	// Data is inline structured data: records, maps, or anything that
	// marshals to a JSON object or array of objects.
	Data any `json:"data,omitempty"`
	// Path is a file read through the configured storage.
	Path string `json:"path,omitempty"`
	// URL is downloaded; its format comes from the dispatch discriminator.
	URL string `json:"url,omitempty"`

	// Encoding labels the bytes of path and url sources. Defaults to utf8.
	Encoding string `json:"encoding,omitempty"`
	// Header treats the first CSV row as column names. Defaults to true.
	Header *bool `json:"header,omitempty"`
	// Delimiter separates CSV fields. Defaults to ",".
	Delimiter string `json:"delimiter,omitempty"`
	// Comment marks CSV lines to skip when they start with it.
	Comment string `json:"comment,omitempty"`

	// Filter keeps only records whose field equals the value.
	Filter *record.Match `json:"filter,omitempty"`
	// Format is applied to every record that passes the filter.
	Format record.Rules `json:"format"`

	// Before rewrites decoded text right before parsing.
	Before func(string) (string, error) `json:"-"`
	// After receives the full formatted sequence and returns the result.
	After func([]record.Record) ([]record.Record, error) `json:"-"`

	// Event names the success notification. Defaults to "data".
	Event string `json:"event,omitempty"`
	// ErrorEvent names the failure notification. Defaults to "error".
	ErrorEvent string `json:"errorEvent,omitempty"`
}

// ApplyDefaults fills zero-valued fields.
func (s *Setting) ApplyDefaults() {
	if s.Encoding == "" {
		s.Encoding = source.DefaultEncoding
	}
	if s.Header == nil {
		s.Header = util.Ptr(true)
	}
	if s.Event == "" {
		s.Event = DefaultEvent
	}
	if s.ErrorEvent == "" {
		s.ErrorEvent = DefaultErrorEvent
	}
}

// Validate checks the fields that do not depend on the source. Missing
// sources and URL formats are reported by source.Resolve. Encoding and
// delimiter are only checked when the source is decoded, so a bad value
// rejects the future instead.
func (s *Setting) Validate() error {
	v := validation.New()
	if s.Filter != nil {
		v.Nested("filter").Required("field", s.Filter.Field)
	}
	s.Format.Check(v.Nested("format"))
	v.Required("event", s.Event)
	v.Required("errorEvent", s.ErrorEvent)
	return v.Err()
}

// Input returns the source fields.
func (s *Setting) Input() source.Input {
	return source.Input{Text: s.Text, Data: s.Data, Path: s.Path, URL: s.URL}
}

// HasHeader reports whether CSV text starts with a header row.
func (s *Setting) HasHeader() bool {
	return util.Deref(s.Header, true)
}
