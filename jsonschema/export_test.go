package jsonschema_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/jsonschema"
)

// normalize marshals v to JSON and unmarshals back into interface{} to remove ordering effects.
func normalize(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestFromSchema_Fields(t *testing.T) {
	cat := schema.NewCatalog(nil)
	s := cat.MustDefine("User", schema.Declaration{
		{Name: "name", Spec: schema.Field{Type: schema.Text, Required: true}},
		{Name: "age", Spec: schema.Integer},
		{Name: "score", Spec: schema.Double},
		{Name: "role", Spec: schema.Field{Type: schema.Text, Default: "member", OneOf: []any{"member", "admin"}}},
		{Name: "tags", Spec: schema.Field{Type: schema.List, Element: schema.Text, ElementRequired: true}},
		{Name: "seen", Spec: schema.Timestamp},
		{Name: "born", Spec: schema.Date},
		{Name: "active", Spec: schema.Boolean},
	})

	js, err := jsonschema.FromSchema(s)
	require.NoError(t, err)

	want := map[string]any{
		"$schema":              jsonschema.Draft,
		"title":                "User",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"name", "tags"},
		"properties": map[string]any{
			"name":   map[string]any{"type": "string"},
			"age":    map[string]any{"type": []any{"integer", "null"}, "format": "int32"},
			"score":  map[string]any{"type": []any{"number", "null"}, "format": "double"},
			"role":   map[string]any{"type": []any{"string", "null"}, "default": "member", "enum": []any{"member", "admin", nil}},
			"tags":   map[string]any{"type": "array", "items": map[string]any{"type": []any{"string", "null"}}, "minItems": float64(1)},
			"seen":   map[string]any{"type": []any{"string", "null"}, "format": "date-time"},
			"born":   map[string]any{"type": []any{"string", "null"}, "format": "date"},
			"active": map[string]any{"type": []any{"boolean", "null"}},
		},
	}
	assert.Equal(t, want, normalize(t, js))
}

func TestFromSchema_RefsAndCycles(t *testing.T) {
	cat := schema.NewCatalog(nil)
	addr := cat.MustDefine("Address", schema.Declaration{{Name: "street", Spec: schema.Text}})
	user := cat.MustDefine("User", schema.Declaration{
		{Name: "home", Spec: addr},
		{Name: "work", Spec: addr},
		{Name: "friends", Spec: []any{cat.Ref("User")}},
		{Name: "boss", Spec: cat.Ref("Manager")},
	})
	cat.MustDefine("Manager", schema.Declaration{{Name: "reports", Spec: []any{user}}})

	js, err := jsonschema.FromSchema(user)
	require.NoError(t, err)
	ref := func(p *jsonschema.Schema) string {
		t.Helper()
		require.Len(t, p.AnyOf, 2)
		assert.Equal(t, "null", p.AnyOf[1].Type)
		return p.AnyOf[0].Ref
	}
	assert.Equal(t, "#/$defs/Address", ref(js.Properties["home"]))
	assert.Equal(t, "#/$defs/Address", ref(js.Properties["work"]))
	assert.Equal(t, "#", ref(js.Properties["friends"].Items))
	assert.Equal(t, "#/$defs/Manager", ref(js.Properties["boss"]))
	require.Len(t, js.Defs, 2)
	assert.Equal(t, "#", ref(js.Defs["Manager"].Properties["reports"].Items))

	b, err := js.MarshalIndent()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"$defs"`)
}

// Optional fields accept an explicit null like the validator does; required
// ones do not.
func TestFromSchema_NullForOptionalFields(t *testing.T) {
	cat := schema.NewCatalog(nil)
	s := cat.MustDefine("Item", schema.Declaration{
		{Name: "id", Spec: schema.Field{Type: schema.Integer, Required: true}},
		{Name: "note", Spec: schema.Text},
	})
	assert.True(t, s.IsValid(context.Background(), map[string]any{"id": 1, "note": nil}))
	assert.False(t, s.IsValid(context.Background(), map[string]any{"id": nil}))

	js, err := jsonschema.FromSchema(s)
	require.NoError(t, err)
	assert.Equal(t, "integer", js.Properties["id"].Type)
	assert.Equal(t, []string{"string", "null"}, js.Properties["note"].Type)
}

func TestFromSchema_Unresolved(t *testing.T) {
	cat := schema.NewCatalog(nil)
	s := cat.MustDefine("A", schema.Declaration{{Name: "b", Spec: cat.Ref("B")}})
	_, err := jsonschema.FromSchema(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B")
}
