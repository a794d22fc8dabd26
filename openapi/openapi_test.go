package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/openapi"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestComponents(t *testing.T) {
	cat := schema.NewCatalog(nil)
	addr := cat.MustDefine("street_address", schema.Declaration{
		{Name: "street", Spec: schema.Field{Type: schema.Text, Required: true}},
	})
	user := cat.MustDefine("user", schema.Declaration{
		{Name: "id", Spec: schema.Field{Type: schema.Integer, Required: true}},
		{Name: "role", Spec: schema.Field{Type: schema.Text, Default: "member", OneOf: []any{"member", "admin"}}},
		{Name: "home", Spec: addr},
		{Name: "friends", Spec: []any{cat.Ref("user")}},
		{Name: "tags", Spec: schema.Field{Type: schema.List, Element: schema.Text, ElementRequired: true}},
	})

	comps, err := openapi.Components(user)
	require.NoError(t, err)
	require.Len(t, comps, 2)

	u := comps["User"].Value
	require.NotNil(t, u)
	assert.True(t, u.Type.Is("object"))
	assert.Equal(t, []string{"id", "tags"}, u.Required)
	assert.Equal(t, "int32", u.Properties["id"].Value.Format)
	assert.True(t, u.Properties["id"].Value.Type.Is("integer"))
	assert.Equal(t, []any{"member", "admin"}, u.Properties["role"].Value.Enum)
	assert.Equal(t, "member", u.Properties["role"].Value.Default)
	assert.Equal(t, openapi.RefPrefix+"StreetAddress", u.Properties["home"].Ref)
	assert.Equal(t, openapi.RefPrefix+"User", u.Properties["friends"].Value.Items.Ref)
	assert.Equal(t, uint64(1), u.Properties["tags"].Value.MinItems)
	require.NotNil(t, u.AdditionalProperties.Has)
	assert.False(t, *u.AdditionalProperties.Has)

	b, err := json.Marshal(comps)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"$ref":"#/components/schemas/StreetAddress"`)
}

// The exported components accept and reject the same documents as the
// validator for the constraints both sides can express.
func TestComponents_AgreeWithValidator(t *testing.T) {
	cat := schema.NewCatalog(nil)
	node := cat.MustDefine("Node", schema.Declaration{
		{Name: "name", Spec: schema.Field{Type: schema.Text, Required: true}},
		{Name: "children", Spec: []any{cat.Ref("Node")}},
	})
	comps, err := openapi.Components(node)
	require.NoError(t, err)
	oas := comps["Node"].Value

	docs := map[string]bool{
		`{"name": "root", "children": [{"name": "leaf"}]}`: true,
		`{"name": "root", "children": [{}]}`:               false,
		`{"name": 1}`:                                      false,
		`{"name": "x", "extra": true}`:                     false,
	}
	for doc, ok := range docs {
		v := decode(t, doc)
		assert.Equal(t, ok, node.IsValid(context.Background(), v), doc)
		assert.Equal(t, ok, oas.VisitJSON(v) == nil, doc)
	}
}

func TestCatalogComponents(t *testing.T) {
	cat := schema.NewCatalog(nil)
	cat.MustDefine("A", schema.Declaration{{Name: "b", Spec: cat.Ref("B")}})
	_, err := openapi.CatalogComponents(cat)
	require.Error(t, err)

	cat.MustDefine("B", schema.Declaration{{Name: "n", Spec: schema.Numeric}})
	comps, err := openapi.CatalogComponents(cat)
	require.NoError(t, err)
	assert.Len(t, comps, 2)

	anon := cat.MustDefine("", schema.Declaration{{Name: "x", Spec: schema.Boolean}})
	assert.Equal(t, "Schema3", openapi.ComponentName(anon))
}
