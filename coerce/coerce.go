// Package coerce converts loosely typed cell values into booleans, numbers,
// strings and arrays.
//
// Cell values arrive either as raw strings (CSV) or as whatever a structured
// parser produced (JSON, YAML, inline data). None of the conversions here
// return errors: numeric coercion reports failure with NaN, boolean coercion
// defaults to false.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// nullTokens are the spellings treated as "no value", compared after
// trimming and lower-casing.
var nullTokens = map[string]struct{}{
	"":          {},
	"null":      {},
	"nil":       {},
	"none":      {},
	"undefined": {},
	"nan":       {},
	"n/a":       {},
	"na":        {},
}

// trueTokens are the spellings ToBool accepts as true.
var trueTokens = map[string]struct{}{
	"true": {},
	"t":    {},
	"yes":  {},
	"y":    {},
	"on":   {},
	"1":    {},
}

// IsNullLike reports whether v is nil or a string spelling of "no value".
func IsNullLike(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		_, ok := nullTokens[strings.ToLower(strings.TrimSpace(x))]
		return ok
	default:
		return false
	}
}

// ToBool converts v to a boolean. Strings are true when they spell one of
// true, t, yes, y, on or 1 (case-insensitive); numbers are true when non-zero
// and not NaN. Everything else is false.
func ToBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		_, ok := trueTokens[strings.ToLower(strings.TrimSpace(x))]
		return ok
	}
	if f, ok := AsFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return false
}

// Split breaks s on sep and trims every part.
func Split(s, sep string) []any {
	parts := strings.Split(s, sep)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// ToString renders v as text. Strings are returned untouched so leading
// zeros and surrounding whitespace survive.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = ToString(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	if f, ok := AsFloat(v); ok {
		return formatFloat(f)
	}
	return fmt.Sprint(v)
}

// Truthy reports whether v counts as a present value: not nil, not an empty
// string, not false, not numeric zero and not NaN.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	}
	if f, ok := AsFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// Equal compares two cell values strictly: values of different kinds never
// match, except that all Go numeric kinds compare by numeric value.
func Equal(a, b any) bool {
	fa, aNum := AsFloat(a)
	fb, bNum := AsFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case nil:
		return b == nil
	}
	return false
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
