// Package input decodes data documents into the JSON-like values formrules
// walks: map[string]any, []any, string, float64, bool and nil.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned when a format cannot be chosen for a file.
var ErrUnknownFormat = errors.New("input: unknown document format")

// DecodeJSON decodes one JSON document from r. Numbers become float64.
func DecodeJSON(r io.Reader) (any, error) {
	var v any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("input: decode json: %w", err)
	}
	if dec.More() {
		return nil, errors.New("input: decode json: trailing data after document")
	}
	return v, nil
}

// DecodeYAML decodes the first YAML document from r. Mappings with
// non-string keys keep only their string keys.
func DecodeYAML(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("input: decode yaml: %w", err)
	}
	return normalizeValue(v), nil
}

// DecodeTOML decodes a TOML document from r. Integers become float64 and
// arrays of tables become []any.
func DecodeTOML(r io.Reader) (any, error) {
	var m map[string]any
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("input: decode toml: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return normalizeValue(m), nil
}

// Decode decodes data in the given format.
func Decode(data []byte, f Format) (any, error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(bytes.NewReader(data))
	case FormatYAML:
		return DecodeYAML(bytes.NewReader(data))
	case FormatTOML:
		return DecodeTOML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// FormatOf picks a format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// DecodeFile decodes the file at path, choosing the format by extension.
func DecodeFile(path string) (any, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	return Decode(data, f)
}

// normalizeValue converts YAML and TOML decoded values (which may contain
// map[any]any or []map[string]any) into JSON-like values and widens integers
// to float64.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeValue(vv)
		}
		return out
	case []map[string]any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
