package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const declYAML = `
schemas:
  Event:
    fields:
      title: {type: string, required: true}
      at: timestamp
      kind: {type: string, default: meeting, oneOf: [meeting, call]}
      tags: [string]
      parent: Event
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	decl := writeFile(t, dir, "schema.yaml", declYAML)
	good := writeFile(t, dir, "good.json", `{"title": "standup", "at": "2025-01-01T09:00:00Z"}`)
	bad := writeFile(t, dir, "bad.yaml", "title: standup\nkind: party\n")
	metricsFile := filepath.Join(dir, "metrics.prom")

	out, _, err := run(t, "validate", "-s", decl, "--print-value", "--metrics-file", metricsFile, good, bad)
	require.ErrorIs(t, err, errInvalid)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, gojson.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, gojson.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, true, first["valid"])
	assert.Equal(t, "meeting", first["value"].(map[string]any)["kind"])
	assert.Equal(t, false, second["valid"])
	assert.Equal(t, "kind", second["path"])
	assert.Equal(t, "invalid_enum", second["code"])

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "irrelon_schema_validations_total")
}

func TestValidate_BadTimestamp(t *testing.T) {
	dir := t.TempDir()
	decl := writeFile(t, dir, "schema.yaml", declYAML)
	doc := writeFile(t, dir, "doc.json", `{"title": "x", "at": "tomorrow"}`)

	out, _, err := run(t, "validate", "-s", decl, doc)
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `"/at"`)
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	decl := writeFile(t, dir, "schema.yaml", declYAML)

	_, _, err := run(t, "validate", filepath.Join(dir, "x.json"))
	assert.ErrorContains(t, err, "--schema")

	_, _, err = run(t, "validate", "-s", decl, "-n", "Nope", filepath.Join(dir, "x.json"))
	assert.ErrorContains(t, err, `"Nope"`)

	_, _, err = run(t, "validate", "-s", decl, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, _, err = run(t, "validate", "-s", decl, "--log-level", "loud", filepath.Join(dir, "x.json"))
	assert.ErrorContains(t, err, "log level")
}

func TestConfig_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	decl := writeFile(t, dir, "schema.yaml", declYAML)
	doc := writeFile(t, dir, "doc.json", `{}`)
	conf := writeFile(t, dir, "conf.yaml", "lang: ja\nlog_level: debug\n")

	out, errOut, err := run(t, "validate", "--config", conf, "-s", decl, doc)
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "必須")
	assert.Contains(t, errOut, "level=DEBUG")

	t.Setenv("IRRELON_SCHEMA_LANG", "en")
	out, _, _ = run(t, "validate", "--config", conf, "-s", decl, doc)
	assert.NotContains(t, out, "必須")

	t.Setenv("IRRELON_SCHEMA_LOG_LEVEL", "error")
	_, errOut, _ = run(t, "validate", "--config", conf, "--log-level", "warn", "-s", decl, doc)
	assert.NotContains(t, errOut, "level=INFO")
}

func TestFlatten(t *testing.T) {
	decl := writeFile(t, t.TempDir(), "schema.yaml", declYAML)

	out, _, err := run(t, "flatten", "-s", decl)
	require.NoError(t, err)
	assert.Contains(t, out, "tags.$")
	assert.Regexp(t, `parent\s+Event`, out)

	out, _, err = run(t, "flatten", "-s", decl, "--json")
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, gojson.Unmarshal([]byte(out), &m))
	assert.Equal(t, "timestamp", m["at"])
}

func TestExport(t *testing.T) {
	decl := writeFile(t, t.TempDir(), "schema.yaml", declYAML)

	out, _, err := run(t, "export", "-s", decl)
	require.NoError(t, err)
	assert.Contains(t, out, `"$ref": "#"`)

	out, _, err = run(t, "export", "-s", decl, "-f", "openapi")
	require.NoError(t, err)
	assert.Contains(t, out, `"Event"`)

	_, _, err = run(t, "export", "-s", decl, "-f", "xml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "irrelon-schema version")
}
