package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesDoc = `
name: [required, {maxLength: 5}]
address:
  city: [required]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Check(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "rules.yaml", rulesDoc)
	valid := writeFile(t, dir, "valid.json", `{"name": "ann", "address": {"city": "Oslo"}}`)
	invalid := writeFile(t, dir, "invalid.yaml", "name: annabelle\naddress: {}\n")
	tomlData := writeFile(t, dir, "valid.toml", "name = \"bo\"\n\n[address]\ncity = \"Bergen\"\n")

	tests := []struct {
		name string
		args []string
		code int
		out  string
	}{
		{"valid", []string{"check", "-rules", rules, "-data", valid}, 0, "valid\n"},
		{"invalid", []string{"check", "-rules", rules, "-data", invalid}, 1, "invalid\n"},
		{"toml data", []string{"check", "-rules", rules, "-data", tomlData}, 0, "valid\n"},
		{"field filter", []string{"check", "-rules", rules, "-data", invalid, "-field", "address"}, 1, "invalid\n"},
		{"unknown field", []string{"check", "-rules", rules, "-data", invalid, "-field", "nope"}, 0, "valid\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, out, _ := runCLI(t, tc.args...)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.out, out)
		})
	}
}

func TestRun_Collect(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "rules.yaml", rulesDoc)
	invalid := writeFile(t, dir, "invalid.json", `{"name": "annabelle", "address": {}}`)
	valid := writeFile(t, dir, "valid.json", `{"name": "ann", "address": {"city": "Oslo"}}`)

	code, out, _ := runCLI(t, "collect", "-rules", rules, "-data", invalid)
	assert.Equal(t, 1, code)
	assert.Equal(t, `{"name":["Must be no more than 5 characters"],"address":{"city":["This field is required"]}}`+"\n", out)

	code, out, _ = runCLI(t, "collect", "-rules", rules, "-data", valid, "-indent")
	assert.Equal(t, 0, code)
	assert.JSONEq(t, `{"name":[],"address":{"city":[]}}`, out)
	assert.Contains(t, out, "\n  ")

	code, out, _ = runCLI(t, "collect", "-rules", rules, "-data", invalid, "-field", "name")
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `{"name":["Must be no more than 5 characters"]}`, out)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "rules.yaml", rulesDoc)
	data := writeFile(t, dir, "data.json", `{}`)
	malformed := writeFile(t, dir, "malformed.yaml", "ok: [required]\nouter:\n  inner: {}\n")
	unknown := writeFile(t, dir, "unknown.yaml", "name: [email]\n")

	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"no subcommand", nil, "Usage:"},
		{"unknown subcommand", []string{"lint"}, "Usage:"},
		{"bad flag", []string{"check", "-nope"}, "flag provided but not defined"},
		{"missing data", []string{"check", "-rules", rules}, "both -rules and -data are required"},
		{"missing rules file", []string{"check", "-rules", filepath.Join(dir, "none.yaml"), "-data", data}, "load rules"},
		{"unknown rule", []string{"collect", "-rules", unknown, "-data", data}, `unknown rule`},
		{"bad data format", []string{"check", "-rules", rules, "-data", rules + ".txt"}, "load data"},
		{"malformed tree", []string{"check", "-rules", malformed, "-data", data}, "path=outer.inner"},
		{"malformed tree collect", []string{"collect", "-rules", malformed, "-data", data}, "malformed rule tree"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, out, stderr := runCLI(t, tc.args...)
			assert.Equal(t, 2, code)
			assert.Empty(t, out)
			assert.Contains(t, stderr, tc.stderr)
		})
	}
}

func TestRun_Environment(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "rules.yaml", rulesDoc)
	data := writeFile(t, dir, "data.json", `{"name": "ann", "address": {"city": "Oslo"}}`)

	t.Setenv("FORMRULES_RULES", rules)
	t.Setenv("FORMRULES_LOG_LEVEL", "debug")
	t.Setenv("FORMRULES_LOG_JSON", "true")

	code, out, stderr := runCLI(t, "check", "-data", data)
	assert.Equal(t, 0, code)
	assert.Equal(t, "valid\n", out)
	assert.Contains(t, stderr, `"msg":"loaded rules"`)
	assert.Contains(t, stderr, `"fields":2`)

	t.Setenv("FORMRULES_LOG_LEVEL", "loud")
	code, _, stderr = runCLI(t, "check", "-data", data)
	assert.Equal(t, 2, code)
	assert.True(t, strings.Contains(stderr, "parse environment"), stderr)
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "formrules check")
}
