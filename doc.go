// Package schema declares the shape of JSON-like documents and checks
// documents against it.
//
// - Declarations in several shapes (bare types, list shorthand, long-hand
//   Field values, maps decoded from YAML/JSON) are normalized into FieldSpecs
// - Schemas live in a Catalog and reference each other by SchemaID, so self
//   and mutual references are plain data
// - Validation is closed world, fail fast, applies defaults and transforms to
//   a copy of the input and reports the writes as Patches
// - Flatten maps every dotted path ("tags.$" for list elements) to its type
//
// Design policy:
// - Keep the schema model and validator in the root package; loaders live in
//   source/, exporters in jsonschema/ and openapi/, the CLI in cmd/irrelon-schema.
// - No package-level mutable registry: a Registry is passed to NewCatalog.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	cat := schema.NewCatalog(nil)
//	user := cat.MustDefine("User", schema.Fields(
//		"name", schema.Field{Type: schema.Text, Required: true},
//		"tags", []any{schema.Text},
//	))
//	res, err := user.Validate(ctx, doc)
package schema
