package jsonschema

import (
	"fmt"
	"sort"
	"strconv"

	schema "github.com/Irrelon/irrelon-schema"
)

// FromSchema exports s as a JSON Schema document. Every schema reachable from
// s other than s itself lands in $defs and is referenced with $ref, so
// recursive schemas export once. References back to s use "#".
//
// Fields that are not required also accept null, as the validator treats an
// explicit nil like a missing value. Lists declared with elementRequired get
// minItems 1. Transforms and helpers
// have no JSON Schema counterpart and are not exported. A reference to a schema
// that was never defined is an error.
func FromSchema(s *schema.Schema) (*Schema, error) {
	x := &exporter{
		root: s,
		reg:  s.Catalog().Registry(),
		cat:  s.Catalog(),
		defs: map[schema.SchemaID]*Schema{},
	}
	out, err := x.object(s)
	if err != nil {
		return nil, err
	}
	out.Dialect = Draft
	out.Title = s.Name()
	if len(x.defs) > 0 {
		out.Defs = make(map[string]*Schema, len(x.defs))
		for id, d := range x.defs {
			out.Defs[x.defName(id)] = d
		}
	}
	return out, nil
}

type exporter struct {
	root *schema.Schema
	reg  *schema.Registry
	cat  *schema.Catalog
	defs map[schema.SchemaID]*Schema
}

func (x *exporter) defName(id schema.SchemaID) string {
	if s, ok := x.cat.Schema(id); ok && s.Name() != "" {
		return s.Name()
	}
	return "schema" + strconv.FormatUint(uint64(id), 10)
}

func (x *exporter) object(s *schema.Schema) (*Schema, error) {
	fields := s.Fields()
	out := &Schema{
		Type:                 "object",
		Properties:           make(map[string]*Schema, len(fields)),
		AdditionalProperties: false,
	}
	for _, f := range fields {
		p, err := x.field(f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s, f.Name, err)
		}
		out.Properties[f.Name] = p
		if f.Required || f.ElementRequired {
			out.Required = append(out.Required, f.Name)
		}
	}
	sort.Strings(out.Required)
	return out, nil
}

func (x *exporter) field(f *schema.FieldSpec) (*Schema, error) {
	out, err := x.typ(f)
	if err != nil {
		return nil, err
	}
	if f.HasDefault {
		out.Default = f.Default
	}
	if len(f.OneOf) > 0 {
		out.Enum = append([]any(nil), f.OneOf...)
	}
	if f.ElementRequired {
		one := 1
		out.MinItems = &one
	}
	if !f.Required && !f.ElementRequired {
		out = nullable(out)
	}
	return out, nil
}

// nullable widens out to also accept null.
func nullable(out *Schema) *Schema {
	if out.Ref != "" {
		return &Schema{
			AnyOf:   []*Schema{{Ref: out.Ref}, {Type: "null"}},
			Default: out.Default,
		}
	}
	t, ok := out.Type.(string)
	if !ok || t == "" {
		return out
	}
	out.Type = []string{t, "null"}
	if len(out.Enum) > 0 {
		out.Enum = append(out.Enum, nil)
	}
	return out
}

func (x *exporter) typ(f *schema.FieldSpec) (*Schema, error) {
	t := f.Type
	if t.Kind == schema.KindSchema {
		return x.ref(t.Schema)
	}
	out := &Schema{Format: x.reg.Format(t)}
	switch u := x.reg.Underlying(t); u.Kind {
	case schema.KindText:
		out.Type = "string"
	case schema.KindNumeric:
		out.Type = "number"
		if out.Format == "int32" || out.Format == "int64" {
			out.Type = "integer"
		}
	case schema.KindBoolean:
		out.Type = "boolean"
	case schema.KindMap:
		out.Type = "object"
	case schema.KindTimestamp:
		out.Type = "string"
		if out.Format == "" {
			out.Format = "date-time"
		}
	case schema.KindList:
		out.Type = "array"
		if f.Element != nil {
			items, err := x.field(f.Element)
			if err != nil {
				return nil, err
			}
			out.Items = items
		}
	case schema.KindCallable:
		out.Comment = "function"
	}
	return out, nil
}

func (x *exporter) ref(id schema.SchemaID) (*Schema, error) {
	if id == x.root.ID() {
		return &Schema{Ref: "#"}, nil
	}
	target, ok := x.cat.Schema(id)
	if !ok {
		return nil, fmt.Errorf("jsonschema: schema %q is not defined", x.cat.TypeName(schema.SchemaRef(id)))
	}
	out := &Schema{Ref: "#/$defs/" + x.defName(id)}
	if _, seen := x.defs[id]; seen {
		return out, nil
	}
	// placeholder first so cycles through this schema stop here
	x.defs[id] = &Schema{}
	body, err := x.object(target)
	if err != nil {
		return nil, err
	}
	*x.defs[id] = *body
	return out, nil
}
