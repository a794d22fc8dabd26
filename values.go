package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
)

// valuePreviewLen bounds how much of a rendered value goes into a reason.
const valuePreviewLen = 10

var timeType = reflect.TypeOf(time.Time{})

// TypeOf names the runtime type of v the way failure reasons report it:
// null, string, number, boolean, array, object, function, timestamp.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case time.Time, *time.Time:
		return "timestamp"
	}
	rv := reflect.ValueOf(v)
	if isBytes(rv) {
		return "string"
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Func:
		return "function"
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
		return TypeOf(rv.Elem().Interface())
	}
	return rv.Kind().String()
}

// isString accepts strings and byte slices or arrays.
func isString(v any) bool {
	if _, ok := v.(string); ok {
		return true
	}
	return isBytes(reflect.ValueOf(v))
}

// isBytes reports whether rv is a slice or array of bytes.
func isBytes(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() == reflect.Uint8
	}
	return false
}
func isBool(v any) bool   { _, ok := v.(bool); return ok }

func isNumeric(v any) bool {
	if _, ok := v.(json.Number); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isList(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return !isBytes(rv)
	}
	return false
}

func isMap(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return true
	case reflect.Struct:
		return rv.Type() != timeType
	}
	return false
}

func isCallable(v any) bool { return v != nil && reflect.ValueOf(v).Kind() == reflect.Func }

func isTimestamp(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case *time.Time:
		return t != nil
	}
	return false
}

// listElems exposes the elements of a slice or array value. Byte slices and
// arrays are strings and have no elements.
func listElems(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if isBytes(rv) {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// isAbsent treats both a missing key and an explicit nil as absent.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	// a nil slice or map is a present, empty value
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// render renders v as JSON, falling back to fmt for values JSON cannot encode.
func render(v any) string {
	if isCallable(v) {
		return "undefined"
	}
	if b, err := gojson.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// preview is render cut to a short prefix.
func preview(v any) string {
	s := render(v)
	if utf8.RuneCountInString(s) > valuePreviewLen {
		s = string([]rune(s)[:valuePreviewLen])
	}
	return s
}

// comparableValue normalizes numbers so oneOf matching does not depend on the
// concrete numeric kind (1, int64(1), 1.0 and json.Number("1") are equal).
func comparableValue(v any) any {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
		return string(n)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func containsValue(set []any, v any) bool {
	cv := comparableValue(v)
	for _, s := range set {
		if reflect.DeepEqual(comparableValue(s), cv) {
			return true
		}
	}
	return false
}
