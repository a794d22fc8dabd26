// Package openapi exports schemas as OpenAPI 3 component schemas.
//
// Every schema reachable from the exported roots becomes one entry of
// components.schemas; nested schema fields reference their entry with
// "#/components/schemas/<Name>". Names are the schema names in UpperCamelCase.
// Anonymous schemas are named Schema<ID>.
package openapi

import (
	"fmt"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/iancoleman/strcase"

	schema "github.com/Irrelon/irrelon-schema"
)

// RefPrefix is prepended to component names in $ref values.
const RefPrefix = "#/components/schemas/"

// ComponentName is the components.schemas key for s.
func ComponentName(s *schema.Schema) string {
	if s.Name() == "" {
		return "Schema" + strconv.FormatUint(uint64(s.ID()), 10)
	}
	return strcase.ToCamel(s.Name())
}

// Components exports roots and every schema they reference. References carry
// both the $ref and the resolved value, so the result can be used with
// openapi3 validation directly.
func Components(roots ...*schema.Schema) (openapi3.Schemas, error) {
	x := &exporter{out: openapi3.Schemas{}, refs: map[schema.SchemaID]*openapi3.SchemaRef{}}
	for _, s := range roots {
		if _, err := x.component(s); err != nil {
			return nil, err
		}
	}
	return x.out, nil
}

// CatalogComponents exports every defined named schema of cat.
func CatalogComponents(cat *schema.Catalog) (openapi3.Schemas, error) {
	var roots []*schema.Schema
	for _, n := range cat.Names() {
		if s, ok := cat.Lookup(n); ok {
			roots = append(roots, s)
		}
	}
	return Components(roots...)
}

type exporter struct {
	out  openapi3.Schemas
	refs map[schema.SchemaID]*openapi3.SchemaRef
}

func (x *exporter) component(s *schema.Schema) (*openapi3.SchemaRef, error) {
	if ref, ok := x.refs[s.ID()]; ok {
		return ref, nil
	}
	name := ComponentName(s)
	if _, dup := x.out[name]; dup {
		return nil, fmt.Errorf("openapi: component name %q is used by two schemas", name)
	}
	// registered before the body is built so cycles resolve to this ref
	body := openapi3.NewObjectSchema()
	ref := openapi3.NewSchemaRef(RefPrefix+name, body)
	x.refs[s.ID()] = ref
	x.out[name] = openapi3.NewSchemaRef("", body)

	no := false
	body.Title = s.Name()
	body.AdditionalProperties = openapi3.AdditionalProperties{Has: &no}
	reg := s.Catalog().Registry()
	for _, f := range s.Fields() {
		p, err := x.field(s.Catalog(), reg, f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s, f.Name, err)
		}
		body.Properties[f.Name] = p
		if f.Required || f.ElementRequired {
			body.Required = append(body.Required, f.Name)
		}
	}
	return ref, nil
}

func (x *exporter) field(cat *schema.Catalog, reg *schema.Registry, f *schema.FieldSpec) (*openapi3.SchemaRef, error) {
	if f.Type.Kind == schema.KindSchema {
		target, ok := cat.Schema(f.Type.Schema)
		if !ok {
			return nil, fmt.Errorf("openapi: schema %q is not defined", cat.TypeName(f.Type))
		}
		return x.component(target)
	}

	var out *openapi3.Schema
	switch u := reg.Underlying(f.Type); u.Kind {
	case schema.KindText:
		out = openapi3.NewStringSchema()
	case schema.KindNumeric:
		out = openapi3.NewFloat64Schema()
		if fm := reg.Format(f.Type); fm == "int32" || fm == "int64" {
			out = openapi3.NewIntegerSchema()
		}
	case schema.KindBoolean:
		out = openapi3.NewBoolSchema()
	case schema.KindMap:
		out = openapi3.NewObjectSchema()
	case schema.KindTimestamp:
		out = openapi3.NewDateTimeSchema()
	case schema.KindList:
		out = openapi3.NewArraySchema()
		if f.Element != nil {
			items, err := x.field(cat, reg, f.Element)
			if err != nil {
				return nil, err
			}
			out.Items = items
		}
		if f.ElementRequired {
			out.WithMinItems(1)
		}
	default:
		out = openapi3.NewSchema()
	}
	if fm := reg.Format(f.Type); fm != "" {
		out.WithFormat(fm)
	}
	if f.HasDefault {
		out.WithDefault(f.Default)
	}
	if len(f.OneOf) > 0 {
		out.WithEnum(f.OneOf...)
	}
	return openapi3.NewSchemaRef("", out), nil
}
