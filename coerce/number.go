package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// floatPrefix matches the longest leading decimal number of a string.
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	hexPrefix   = regexp.MustCompile(`^([+-]?)0[xX]([0-9a-fA-F]+)`)
)

// NaN is the sentinel numeric coercion returns for unparseable input.
var NaN = math.NaN()

// IsNaN reports whether v is a floating-point NaN.
func IsNaN(v any) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// AsFloat returns v as a float64 when it holds any Go numeric kind.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToInt parses the leading integer of v. Trailing garbage is ignored
// ("30abc" is 30, "3.9" is 3) and a 0x prefix selects hexadecimal. The
// result is an int64, or NaN when no integer can be read. Integers too large
// for int64 come back as float64.
func ToInt(v any) any {
	switch x := v.(type) {
	case string:
		return parseIntPrefix(x)
	case bool, nil:
		return NaN
	}
	f, ok := AsFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return NaN
	}
	if f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return math.Trunc(f)
}

// ToFloat parses the longest leading decimal number of v, accepting the
// Infinity spellings. It returns NaN when nothing numeric can be read.
func ToFloat(v any) float64 {
	switch x := v.(type) {
	case string:
		return parseFloatPrefix(x)
	case bool, nil:
		return NaN
	}
	if f, ok := AsFloat(v); ok {
		return f
	}
	return NaN
}

func parseIntPrefix(s string) any {
	s = strings.TrimSpace(s)
	if m := hexPrefix.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseInt(m[1]+m[2], 16, 64)
		if err == nil {
			return n
		}
		return NaN
	}
	digits := intPrefix.FindString(s)
	if digits == "" {
		return NaN
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err == nil {
		return n
	}
	f, ferr := strconv.ParseFloat(digits, 64)
	if ferr != nil && !isRangeErr(ferr) {
		return NaN
	}
	return f
}

func parseFloatPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	for _, inf := range []struct {
		prefix string
		sign   int
	}{{"Infinity", 1}, {"+Infinity", 1}, {"-Infinity", -1}} {
		if strings.HasPrefix(s, inf.prefix) {
			return math.Inf(inf.sign)
		}
	}
	m := floatPrefix.FindString(s)
	if m == "" {
		return NaN
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !isRangeErr(err) {
		return NaN
	}
	return f
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
