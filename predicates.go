package formrules

import (
	"reflect"
	"strings"
	"unicode/utf8"
)

// hasValue reports whether value counts as filled in. Strings are trimmed
// first; zero numbers and false count as empty.
func hasValue(value any) bool {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return !isEmpty(reflect.ValueOf(value))
}

func isEmpty(rv reflect.Value) bool {
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isEmpty(rv.Elem())
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return rv.IsZero()
	case reflect.Struct:
		return rv.IsZero()
	case reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// lengthOf returns the length of array-like values: strings (in runes),
// slices and arrays. Maps, numbers and structs are not array-like.
func lengthOf(value any) (int, bool) {
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(value)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), true
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func validateMaxLength(value any, maxLen int) bool {
	n, ok := lengthOf(value)
	return ok && n <= maxLen
}

func validateMinLength(value any, minLen int) bool {
	n, ok := lengthOf(value)
	return ok && n >= minLen
}

// listItems returns the items of a slice or array value, or false for
// anything else. Strings are array-like but have no items.
func listItems(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
