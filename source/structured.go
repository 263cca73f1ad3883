package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/kbukum/tabkit/record"
)

// ParseJSON parses a JSON array of objects, or a single object, into records.
func ParseJSON(text string) ([]record.Record, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return toRecords(v)
}

// ParseYAML parses a YAML sequence of mappings, or a single mapping, into
// records. Integer scalars become int64, non-string keys are formatted as
// strings.
func ParseYAML(text string) ([]record.Record, error) {
	if strings.TrimSpace(text) == "" {
		return []record.Record{}, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return toRecords(normalizeValue(v))
}

// Normalize turns inline structured data into records. It accepts record
// slices, []map[string]any, []any of objects, a single object, or any value
// that marshals to one of those as JSON.
func Normalize(data any) ([]record.Record, error) {
	switch v := data.(type) {
	case []record.Record:
		out := make([]record.Record, len(v))
		for i, r := range v {
			out[i] = r.Clone()
		}
		return out, nil
	case []map[string]any:
		out := make([]record.Record, len(v))
		for i, m := range v {
			out[i] = record.Record(m).Clone()
		}
		return out, nil
	case record.Record:
		return []record.Record{v.Clone()}, nil
	case map[string]any:
		return []record.Record{record.Record(v).Clone()}, nil
	case []any:
		return toRecords(v)
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal inline data: %w", err)
	}
	return ParseJSON(string(b))
}

func toRecords(v any) ([]record.Record, error) {
	switch t := v.(type) {
	case map[string]any:
		return []record.Record{t}, nil
	case []any:
		out := make([]record.Record, 0, len(t))
		for i, el := range t {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not an object", i, el)
			}
			out = append(out, m)
		}
		return out, nil
	case nil:
		return []record.Record{}, nil
	}
	return nil, fmt.Errorf("expected an array of objects, got %T", v)
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, el := range t {
			t[k] = normalizeValue(el)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, el := range t {
			m[fmt.Sprint(k)] = normalizeValue(el)
		}
		return m
	case []any:
		for i, el := range t {
			t[i] = normalizeValue(el)
		}
		return t
	case int:
		return int64(t)
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	}
	return v
}
