// Package source decides where a request's raw data comes from and turns it
// into records.
//
// Resolve picks the source and parser for a request without doing any I/O.
// A Loader then reads, decodes and parses the data:
//
//	plan, err := source.Resolve(in, "")
//	if err != nil {
//	    return err // configuration error
//	}
//	records, err := loader.Load(ctx, plan, source.Request{Input: in, Header: true})
package source

import (
	"path/filepath"
	"strings"

	apperrors "github.com/kbukum/tabkit/errors"
)

// Format names the parser applied to raw text.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a discriminator such as "JSON" or "yml" to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, true
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	}
	return "", false
}

// Kind identifies which input field supplies the data.
type Kind string

const (
	KindText Kind = "text"
	KindData Kind = "data"
	KindPath Kind = "path"
	KindURL  Kind = "url"
)

// Input holds the mutually exclusive source fields of a request.
type Input struct {
	// Text is inline CSV. A non-nil pointer to "" is a valid empty source.
	Text *string
	// Data is inline structured data that is already parsed.
	Data any
	// Path is a file path read through storage.
	Path string
	// URL is a remote location read through the fetcher.
	URL string
}

// Plan is the outcome of Resolve.
type Plan struct {
	Kind Kind
	// Format is empty for KindData.
	Format Format
}

// Resolve decides the source kind and parser for in. The first populated
// field wins in the order text, data, path, url. URL sources take their
// format from discriminator; a missing or unknown discriminator is a
// configuration error, as is an input with no source at all.
func Resolve(in Input, discriminator string) (Plan, error) {
	switch {
	case in.Text != nil:
		return Plan{Kind: KindText, Format: FormatCSV}, nil
	case in.Data != nil:
		return Plan{Kind: KindData}, nil
	case in.Path != "":
		return Plan{Kind: KindPath, Format: FormatForPath(in.Path)}, nil
	case in.URL != "":
		f, ok := ParseFormat(discriminator)
		if !ok {
			return Plan{}, apperrors.MissingFormat(in.URL, discriminator)
		}
		return Plan{Kind: KindURL, Format: f}, nil
	}
	return Plan{}, apperrors.MissingSource()
}

// FormatForPath infers the parser from a file extension. Anything that is
// not JSON or YAML is read as CSV.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatCSV
}
