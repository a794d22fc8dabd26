package openapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	schema "github.com/Irrelon/irrelon-schema"
)

// Diag carries non-fatal warnings produced during import.
type Diag struct {
	Warnings []string
}

func (d *Diag) warnf(f string, a ...any) { d.Warnings = append(d.Warnings, fmt.Sprintf(f, a...)) }

// ImportDocument loads an OpenAPI 3 document (JSON or YAML) and imports its
// component schemas into cat.
func ImportDocument(cat *schema.Catalog, data []byte) ([]*schema.Schema, *Diag, error) {
	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, &Diag{}, fmt.Errorf("openapi: invalid document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, &Diag{}, errors.New("openapi: document has no component schemas")
	}
	return Import(cat, doc.Components.Schemas)
}

// Import defines one schema per object component, in name order. Component
// references become schema references, inline objects become anonymous
// schemas. Keywords without a counterpart (patterns, bounds, composition)
// are skipped with a warning; additionalProperties is ignored since schemas
// are closed.
func Import(cat *schema.Catalog, comps openapi3.Schemas) ([]*schema.Schema, *Diag, error) {
	d := &Diag{}
	names := make([]string, 0, len(comps))
	for name := range comps {
		names = append(names, name)
	}
	sort.Strings(names)

	im := importer{cat: cat, diag: d}
	for _, name := range names {
		cat.Ref(name)
	}
	out := make([]*schema.Schema, 0, len(names))
	for _, name := range names {
		ref := comps[name]
		if ref == nil || ref.Value == nil {
			return nil, d, fmt.Errorf("openapi: component %q has no schema", name)
		}
		if !ref.Value.Type.Is(openapi3.TypeObject) && len(ref.Value.Properties) == 0 {
			d.warnf("component %q is not an object schema (skipped)", name)
			continue
		}
		decl, err := im.object(name, ref.Value)
		if err != nil {
			return nil, d, err
		}
		s, err := cat.Define(name, decl)
		if err != nil {
			return nil, d, fmt.Errorf("openapi: component %q: %w", name, err)
		}
		out = append(out, s)
	}
	return out, d, nil
}

type importer struct {
	cat  *schema.Catalog
	diag *Diag
}

func (im importer) object(path string, s *openapi3.Schema) (schema.Declaration, error) {
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	decl := make(schema.Declaration, 0, len(keys))
	for _, k := range keys {
		f, err := im.field(path+"."+k, s.Properties[k])
		if err != nil {
			return nil, err
		}
		f.Required = required[k]
		if f.Required && f.Default != nil {
			im.diag.warnf("%s.%s: default on a required property (ignored)", path, k)
			f.Default = nil
		}
		decl = append(decl, schema.Decl{Name: k, Spec: f})
	}
	return decl, nil
}

func (im importer) field(path string, ref *openapi3.SchemaRef) (schema.Field, error) {
	if ref == nil {
		return schema.Field{Type: schema.Any}, nil
	}
	if ref.Ref != "" {
		name, ok := strings.CutPrefix(ref.Ref, RefPrefix)
		if !ok {
			return schema.Field{}, fmt.Errorf("openapi: %s: unsupported $ref %q", path, ref.Ref)
		}
		return schema.Field{Type: im.cat.Ref(name)}, nil
	}
	s := ref.Value
	if s == nil {
		return schema.Field{Type: schema.Any}, nil
	}
	im.unsupported(path, s)

	f := schema.Field{Default: s.Default}
	if len(s.Enum) > 0 {
		f.OneOf = append([]any(nil), s.Enum...)
	}
	switch {
	case s.Type.Is(openapi3.TypeString):
		f.Type = stringType(s.Format)
	case s.Type.Is(openapi3.TypeInteger):
		f.Type = schema.Integer
		if s.Format == "int64" {
			f.Type = schema.Long
		}
	case s.Type.Is(openapi3.TypeNumber):
		f.Type = schema.Numeric
		switch s.Format {
		case "float":
			f.Type = schema.Float
		case "double":
			f.Type = schema.Double
		}
	case s.Type.Is(openapi3.TypeBoolean):
		f.Type = schema.Boolean
	case s.Type.Is(openapi3.TypeArray):
		el, err := im.field(path+"."+schema.Wildcard, s.Items)
		if err != nil {
			return schema.Field{}, err
		}
		f.Type = schema.List
		f.Element = el
		f.ElementRequired = s.MinItems > 0
	case s.Type.Is(openapi3.TypeObject) || len(s.Properties) > 0:
		if len(s.Properties) == 0 {
			f.Type = schema.Map
			break
		}
		decl, err := im.object(path, s)
		if err != nil {
			return schema.Field{}, err
		}
		nested, err := im.cat.Define("", decl)
		if err != nil {
			return schema.Field{}, fmt.Errorf("openapi: %s: %w", path, err)
		}
		f.Type = nested
	default:
		f.Type = schema.Any
	}
	return f, nil
}

func stringType(format string) schema.Type {
	switch format {
	case "date-time":
		return schema.DateTime
	case "date":
		return schema.Date
	case "byte":
		return schema.Byte
	case "binary":
		return schema.Binary
	case "password":
		return schema.Password
	}
	return schema.Text
}

func (im importer) unsupported(path string, s *openapi3.Schema) {
	var kw []string
	if len(s.OneOf)+len(s.AnyOf)+len(s.AllOf) > 0 || s.Not != nil {
		kw = append(kw, "composition")
	}
	if s.Pattern != "" {
		kw = append(kw, "pattern")
	}
	if s.Min != nil || s.Max != nil || s.MultipleOf != nil {
		kw = append(kw, "numeric bounds")
	}
	if s.MinLength > 0 || s.MaxLength != nil {
		kw = append(kw, "length bounds")
	}
	if s.MaxItems != nil || s.UniqueItems {
		kw = append(kw, "array bounds")
	}
	if s.Nullable {
		kw = append(kw, "nullable")
	}
	if len(kw) > 0 {
		im.diag.warnf("%s: %s not supported (ignored)", path, strings.Join(kw, ", "))
	}
}
