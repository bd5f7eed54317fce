package input_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formrules/input"
)

func TestDecodeJSON(t *testing.T) {
	v, err := input.DecodeJSON(strings.NewReader(`{"a": [1, "x", true, null], "b": {"c": 2.5}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": []any{float64(1), "x", true, nil},
		"b": map[string]any{"c": 2.5},
	}, v)

	_, err = input.DecodeJSON(strings.NewReader(`{"a": `))
	assert.Error(t, err)

	_, err = input.DecodeJSON(strings.NewReader(`{} {}`))
	assert.Error(t, err)
}

func TestDecodeYAMLMatchesJSON(t *testing.T) {
	fromYAML, err := input.DecodeYAML(strings.NewReader("a:\n  - 1\n  - x\n  - true\n  - null\nb:\n  c: 2.5\n"))
	require.NoError(t, err)
	fromJSON, err := input.DecodeJSON(strings.NewReader(`{"a": [1, "x", true, null], "b": {"c": 2.5}}`))
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)

	v, err := input.DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecodeTOML(t *testing.T) {
	doc := `
title = "quiz"
count = 3

[cover]
header = "h"

[[questions]]
id = "q1"
tags = ["a", "b"]

[[questions]]
id = "q2"
`
	v, err := input.DecodeTOML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "quiz",
		"count": float64(3),
		"cover": map[string]any{"header": "h"},
		"questions": []any{
			map[string]any{"id": "q1", "tags": []any{"a", "b"}},
			map[string]any{"id": "q2"},
		},
	}, v)

	_, err = input.DecodeTOML(strings.NewReader("a = "))
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "data.json")
	yamlPath := filepath.Join(dir, "data.YML")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name": "n"}`), 0o600))
	tomlPath := filepath.Join(dir, "data.toml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: n\n"), 0o600))
	require.NoError(t, os.WriteFile(tomlPath, []byte("name = \"n\"\n"), 0o600))

	for _, p := range []string{jsonPath, yamlPath, tomlPath} {
		v, err := input.DecodeFile(p)
		require.NoError(t, err, p)
		assert.Equal(t, map[string]any{"name": "n"}, v)
	}

	_, err := input.DecodeFile(filepath.Join(dir, "data.txt"))
	assert.ErrorIs(t, err, input.ErrUnknownFormat)

	_, err = input.DecodeFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := input.Decode([]byte("x"), input.Format("ini"))
	assert.ErrorIs(t, err, input.ErrUnknownFormat)
}
