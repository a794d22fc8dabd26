// Package codec converts wire representations into the Go values the
// validator expects. JSON and YAML carry timestamps as strings; the validator
// checks them as time.Time.
package codec

import (
	"strconv"
	"time"

	schema "github.com/Irrelon/irrelon-schema"
)

// DecodeTime parses an RFC3339 timestamp (fractional seconds optional).
func DecodeTime(s string) (time.Time, error) {
	return parseRFC3339(s)
}

// EncodeTime formats t in canonical form: UTC, RFC3339Nano.
func EncodeTime(t time.Time) string {
	return formatRFC3339Canonical(t)
}

// DecodeTimestamps replaces RFC3339 strings found at timestamp-typed fields of
// s (including custom types based on timestamps, like date-time) with
// time.Time values. It walks map[string]any / []any trees as produced by the
// source decoders and writes in place. Values that are not strings are left
// for the validator to report.
func DecodeTimestamps(s *schema.Schema, doc any) (any, error) {
	d := decoder{reg: s.Catalog().Registry(), cat: s.Catalog()}
	var issues schema.Issues
	if obj, ok := doc.(map[string]any); ok {
		d.object(s, obj, "", &issues)
	}
	if len(issues) > 0 {
		return doc, issues
	}
	return doc, nil
}

type decoder struct {
	reg *schema.Registry
	cat *schema.Catalog
}

func (d decoder) object(s *schema.Schema, obj map[string]any, path string, issues *schema.Issues) {
	for _, f := range s.Fields() {
		v, ok := obj[f.Name]
		if !ok {
			continue
		}
		obj[f.Name] = d.value(f, v, schema.JoinPath(path, f.Name), issues)
	}
}

func (d decoder) value(f *schema.FieldSpec, v any, path string, issues *schema.Issues) any {
	switch d.reg.Underlying(f.Type).Kind {
	case schema.KindTimestamp:
		str, ok := v.(string)
		if !ok {
			return v
		}
		t, err := parseRFC3339(str)
		if err != nil {
			*issues = append(*issues, schema.Issue{
				Path:    schema.PointerFromPath(path),
				Code:    schema.CodeInvalidType,
				Message: "invalid RFC3339 time",
				Params:  map[string]any{"value": str},
			})
			return v
		}
		return t
	case schema.KindList:
		list, ok := v.([]any)
		if !ok || f.Element == nil {
			return v
		}
		for i, e := range list {
			list[i] = d.value(f.Element, e, schema.JoinPath(path, strconv.Itoa(i)), issues)
		}
	case schema.KindSchema:
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}
		if target, ok := d.cat.Schema(f.Type.Schema); ok {
			d.object(target, obj, path, issues)
		}
	}
	return v
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
