package openapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/openapi"
)

const petstore = `
openapi: 3.0.3
info: {title: pets, version: "1"}
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name: {type: string, pattern: "^[a-z]+$"}
        age: {type: integer, format: int32}
        kind: {type: string, enum: [cat, dog], default: cat}
        born: {type: string, format: date-time}
        owner: {$ref: "#/components/schemas/Owner"}
        tags:
          type: array
          minItems: 1
          items: {type: string}
        collar:
          type: object
          properties:
            color: {type: string}
    Owner:
      type: object
      properties:
        pets:
          type: array
          items: {$ref: "#/components/schemas/Pet"}
    Status:
      type: string
`

func TestImportDocument(t *testing.T) {
	cat := schema.NewCatalog(nil)
	schemas, diag, err := openapi.ImportDocument(cat, []byte(petstore))
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "Owner", schemas[0].Name())
	assert.Equal(t, "Pet", schemas[1].Name())
	assert.Len(t, diag.Warnings, 2, diag.Warnings)

	pet := schemas[1]
	f, _ := pet.Field("name")
	assert.True(t, f.Required)
	f, _ = pet.Field("age")
	assert.Equal(t, schema.Integer, f.Type)
	f, _ = pet.Field("born")
	assert.Equal(t, schema.DateTime, f.Type)
	f, _ = pet.Field("kind")
	assert.Equal(t, "cat", f.Default)
	assert.Equal(t, []any{"cat", "dog"}, f.OneOf)
	f, _ = pet.Field("tags")
	assert.True(t, f.ElementRequired)
	f, _ = pet.Field("owner")
	assert.Equal(t, schemas[0].Type(), f.Type)
	f, _ = pet.Field("collar")
	assert.Equal(t, schema.KindSchema, f.Type.Kind)
	assert.Empty(t, cat.Unresolved())

	ctx := context.Background()
	assert.True(t, pet.IsValid(ctx, map[string]any{
		"name":   "rex",
		"tags":   []any{"good"},
		"collar": map[string]any{"color": "red"},
		"owner":  map[string]any{"pets": []any{map[string]any{"name": "tom", "tags": []any{"x"}}}},
	}))
	assert.False(t, pet.IsValid(ctx, map[string]any{"name": "rex", "tags": []any{}}))
}

func TestImport_RoundTrip(t *testing.T) {
	src := schema.NewCatalog(nil)
	user := src.MustDefine("User", schema.Declaration{
		{Name: "id", Spec: schema.Field{Type: schema.Long, Required: true}},
		{Name: "role", Spec: schema.Field{Type: schema.Text, Default: "member", OneOf: []any{"member", "admin"}}},
		{Name: "friends", Spec: []any{src.Ref("User")}},
	})
	comps, err := openapi.Components(user)
	require.NoError(t, err)

	dst := schema.NewCatalog(nil)
	schemas, diag, err := openapi.Import(dst, comps)
	require.NoError(t, err)
	assert.Empty(t, diag.Warnings)
	require.Len(t, schemas, 1)

	for _, name := range []string{"id", "role", "friends"} {
		want, _ := user.Field(name)
		got, ok := schemas[0].Field(name)
		require.True(t, ok, name)
		assert.Equal(t, want.Required, got.Required, name)
		assert.Equal(t, want.Default, got.Default, name)
		assert.Equal(t, want.OneOf, got.OneOf, name)
	}
	f, _ := schemas[0].Field("friends")
	assert.Equal(t, schemas[0].Type(), f.Element.Type)
}

func TestImportDocument_Errors(t *testing.T) {
	_, _, err := openapi.ImportDocument(schema.NewCatalog(nil), []byte("openapi: [\n"))
	assert.Error(t, err)

	_, _, err = openapi.ImportDocument(schema.NewCatalog(nil), []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n"))
	assert.Error(t, err)
}
