package formrules

import (
	"reflect"
	"strings"
)

// ResolveStructKey resolves the key under which a struct field is matched
// against rule tree field names.
// Priority: formrules:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("formrules"); gt != "" {
		parts := strings.Split(gt, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		name := jt
		if i := strings.IndexByte(jt, ','); i >= 0 {
			name = jt[:i]
		}
		if name == "" {
			return sf.Name
		}
		return name
	}
	return sf.Name
}

// Lookup reads field name from obj. Maps with string keys and structs are
// supported, through any number of pointers. The boolean reports whether the
// field exists on obj; a present field holding nil still counts.
func Lookup(obj any, name string) (any, bool) {
	if m, ok := obj.(map[string]any); ok {
		v, found := m[name]
		return v, found
	}
	rv := reflect.ValueOf(obj)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(kt))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			if key := ResolveStructKey(sf); key != "-" && key == name {
				return rv.Field(i).Interface(), true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}
