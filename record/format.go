package record

import (
	"strings"

	"github.com/kbukum/tabkit/coerce"
)

// outcome tells the formatter what to do with a field after a stage.
type outcome int

const (
	next outcome = iota // run the following stage
	emit                // write field.value and stop
	omit                // drop the field and stop
)

// field is the per-field state threaded through the stages. raw is never
// modified so stages can refer back to the original cell.
type field struct {
	key   string
	raw   any
	value any
}

type stage struct {
	name  string
	apply func(c *compiled, f *field) outcome
}

// stages run in order for every field; the first stage that emits or omits
// ends processing for that field.
var stages = []stage{
	{"dropEmpty", dropEmpty},
	{"keep", keepListed},
	{"trim", trim},
	{"split", split},
	{"toBool", toBool},
	{"toNumber", toNumber},
	{"toString", toString},
}

// Formatter applies a compiled rule set to records.
type Formatter struct {
	rules compiled
}

// NewFormatter compiles rules for repeated use.
func NewFormatter(rules Rules) *Formatter {
	return &Formatter{rules: rules.compile()}
}

// Format returns a new record with the rules applied to every field of rec.
func (f *Formatter) Format(rec Record) Record {
	out := make(Record, len(rec))
	for key, raw := range rec {
		if value, ok := f.formatField(key, raw); ok {
			out[key] = value
		}
	}
	return out
}

func (f *Formatter) formatField(key string, raw any) (any, bool) {
	fl := &field{key: key, raw: raw, value: raw}
	for _, s := range stages {
		switch s.apply(&f.rules, fl) {
		case emit:
			return fl.value, true
		case omit:
			return nil, false
		}
	}
	return fl.value, true
}

// Format applies rules to a single record.
func Format(rec Record, rules Rules) Record {
	return NewFormatter(rules).Format(rec)
}

func dropEmpty(_ *compiled, f *field) outcome {
	if s, ok := f.raw.(string); ok && s == "" {
		return omit
	}
	return next
}

func keepListed(c *compiled, f *field) outcome {
	if c.restrict && !has(c.keep, f.key) {
		return omit
	}
	return next
}

func trim(c *compiled, f *field) outcome {
	if s, ok := f.value.(string); ok && !c.allowSpace {
		f.value = strings.TrimSpace(s)
	}
	return next
}

func split(c *compiled, f *field) outcome {
	s, ok := f.value.(string)
	if !ok {
		return next
	}
	switch {
	case has(c.comma, f.key):
		f.value = coerce.Split(s, ",")
	case has(c.semicolon, f.key):
		f.value = coerce.Split(s, ";")
	}
	return next
}

func toBool(c *compiled, f *field) outcome {
	if !has(c.toBool, f.key) {
		return next
	}
	f.value = convert(c, f.value, func(v any) any { return coerce.ToBool(v) })
	return emit
}

func toNumber(c *compiled, f *field) outcome {
	switch {
	case has(c.toInt, f.key):
		f.value = convert(c, f.value, coerce.ToInt)
	case has(c.toFloat, f.key):
		f.value = convert(c, f.value, func(v any) any { return coerce.ToFloat(v) })
	default:
		return next
	}
	return emit
}

func toString(c *compiled, f *field) outcome {
	if !has(c.toString, f.key) {
		return next
	}
	if f.raw == nil {
		f.value = nil
	} else {
		f.value = coerce.ToString(f.raw)
	}
	return emit
}

// convert applies fn to every element of an array value, or to a scalar
// value. With AllowNull, null-like scalars become nil instead.
func convert(c *compiled, value any, fn func(any) any) any {
	if arr, ok := value.([]any); ok {
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = fn(e)
		}
		return out
	}
	if c.allowNull && coerce.IsNullLike(value) {
		return nil
	}
	return fn(value)
}
