package bus

import (
	"encoding/json"
	"math"
	"reflect"
)

var marshalerType = reflect.TypeFor[json.Marshaler]()

// Encode renders e as JSON. Non-finite floats, which JSON cannot carry,
// become null, and plain errors become their message.
func Encode(e Event) ([]byte, error) {
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		args[i] = Sanitize(a)
	}
	e.Args = args
	return json.Marshal(e)
}

// Sanitize returns a copy of v that encoding/json can marshal: NaN and
// infinities become nil, errors without a JSON form become strings. Maps
// with string keys and slices are walked recursively.
func Sanitize(v any) any {
	if v == nil {
		return nil
	}
	return sanitizeValue(reflect.ValueOf(v))
}

func sanitizeValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	if rv.Type().Implements(marshalerType) {
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return nil
		}
		return rv.Interface()
	}
	if err, ok := rv.Interface().(error); ok {
		return err.Error()
	}

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return rv.Interface()
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
			return rv.Interface()
		}
		return sanitizeValue(rv.Elem())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = sanitizeValue(iter.Value())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return nil
			}
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				return rv.Interface()
			}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = sanitizeValue(rv.Index(i))
		}
		return out
	}
	return rv.Interface()
}
