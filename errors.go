package formrules

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrMalformedTree is matched by every *StructureError.
var ErrMalformedTree = errors.New("formrules: malformed rule tree")

// StructureError reports a field declaration that is neither a rule list nor
// a non-empty nested tree. It is a programming error, not a validation
// failure, and aborts the whole call.
type StructureError struct {
	Path string // dotted path of the offending field
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("formrules: field %q must declare a rule list or a non-empty nested tree", e.Path)
}

func (e *StructureError) Unwrap() error { return ErrMalformedTree }

// AsStructureError extracts a *StructureError from err using errors.As.
func AsStructureError(err error) (*StructureError, bool) {
	if err == nil {
		return nil, false
	}
	var se *StructureError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Errors is the report built by CollectErrors. It mirrors the rule tree:
// each declared field maps to one of
//
//   - []string: messages of the rules that failed, in rule order
//   - *Errors: the report of a nested tree
//   - []*Errors: per-item reports of an ItemRules field
//   - []any: per-item reports followed by messages of rules declared after
//     ItemRules in the same field
//   - any other value returned by an ItemConverter
//
// Keys keep the order in which the walker first reached them.
type Errors struct {
	keys []string
	vals map[string]any
}

func newErrors() *Errors { return &Errors{vals: map[string]any{}} }

// Keys returns the field names in declaration order.
func (e *Errors) Keys() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.keys...)
}

// Len returns the number of fields in the report.
func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

// Get returns the raw value stored for name.
func (e *Errors) Get(name string) (any, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.vals[name]
	return v, ok
}

// Messages returns the messages stored for name, or nil when name holds
// something else.
func (e *Errors) Messages(name string) []string {
	v, _ := e.Get(name)
	msgs, _ := v.([]string)
	return msgs
}

// Child returns the nested report stored for name.
func (e *Errors) Child(name string) *Errors {
	v, _ := e.Get(name)
	c, _ := v.(*Errors)
	return c
}

// Items returns the per-item reports stored for name.
func (e *Errors) Items(name string) []*Errors {
	v, _ := e.Get(name)
	items, _ := v.([]*Errors)
	return items
}

// At follows keys through nested reports and item lists. List items are
// addressed as "[i]" or plain "i".
func (e *Errors) At(keys ...string) (any, bool) {
	var cur any = e
	for _, k := range keys {
		switch t := cur.(type) {
		case *Errors:
			v, ok := t.Get(k)
			if !ok {
				return nil, false
			}
			cur = v
		case []*Errors:
			i, ok := itemIndex(k, len(t))
			if !ok {
				return nil, false
			}
			cur = t[i]
		case []any:
			i, ok := itemIndex(k, len(t))
			if !ok {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// HasErrors reports whether any field carries at least one message.
func (e *Errors) HasErrors() bool {
	if e == nil {
		return false
	}
	for _, k := range e.keys {
		if hasContent(e.vals[k]) {
			return true
		}
	}
	return false
}

// Map converts the report into plain maps and slices: nested reports become
// map[string]any and item lists become []any.
func (e *Errors) Map() map[string]any {
	if e == nil {
		return nil
	}
	out := make(map[string]any, len(e.keys))
	for _, k := range e.keys {
		out[k] = plain(e.vals[k])
	}
	return out
}

// MarshalJSON renders the report as a JSON object in key order.
func (e *Errors) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range e.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		vb, err := json.Marshal(e.vals[k])
		if err != nil {
			return nil, fmt.Errorf("formrules: marshal %q: %w", k, err)
		}
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func itemIndex(k string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(k, "["), "]"))
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

func (e *Errors) set(name string, v any) {
	if _, ok := e.vals[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.vals[name] = v
}

func (e *Errors) lookup(path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := e
	for _, k := range path[:len(path)-1] {
		cur = cur.Child(k)
		if cur == nil {
			return nil, false
		}
	}
	return cur.Get(path[len(path)-1])
}

// setAt stores v under path, creating nested reports as needed.
func (e *Errors) setAt(path []string, v any) {
	if len(path) == 0 {
		return
	}
	cur := e
	for _, k := range path[:len(path)-1] {
		next := cur.Child(k)
		if next == nil {
			next = newErrors()
			cur.set(k, next)
		}
		cur = next
	}
	cur.set(path[len(path)-1], v)
}

// ClearErrors resets the messages of each named top-level field present in
// errs to an empty list. Names missing from errs are left alone.
func ClearErrors(errs *Errors, fields ...string) {
	if errs.Len() == 0 {
		return
	}
	for _, name := range fields {
		if _, ok := errs.vals[name]; ok {
			errs.vals[name] = []string{}
		}
	}
}

func hasContent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case []string:
		return len(t) > 0
	case *Errors:
		return t.HasErrors()
	case []*Errors:
		for _, it := range t {
			if it.HasErrors() {
				return true
			}
		}
		return false
	case map[string]any:
		for _, vv := range t {
			if hasContent(vv) {
				return true
			}
		}
		return false
	case []any:
		for _, vv := range t {
			if hasContent(vv) {
				return true
			}
		}
		return false
	case string:
		return t != ""
	default:
		return valueHasContent(reflect.ValueOf(v))
	}
}

// valueHasContent judges converter results of other types: containers have
// content when any element does.
func valueHasContent(rv reflect.Value) bool {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if hasContent(iter.Value().Interface()) {
				return true
			}
		}
		return false
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if hasContent(rv.Index(i).Interface()) {
				return true
			}
		}
		return false
	case reflect.Struct:
		for i := range rv.NumField() {
			if rv.Type().Field(i).IsExported() && hasContent(rv.Field(i).Interface()) {
				return true
			}
		}
		return false
	default:
		return !isEmpty(rv)
	}
}

func plain(v any) any {
	switch t := v.(type) {
	case *Errors:
		return t.Map()
	case []*Errors:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = it.Map()
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = plain(it)
		}
		return out
	case []string:
		return append([]string{}, t...)
	default:
		return v
	}
}
