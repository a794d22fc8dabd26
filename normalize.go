package schema

import (
	"context"
	"errors"

	"github.com/mitchellh/mapstructure"
)

// normalizer converts declarations into FieldSpecs for schemas of one Catalog.
type normalizer struct {
	cat *Catalog
	reg *Registry
}

// Normalize converts decl into canonical FieldSpecs, in declaration order.
// Re-normalizing FieldSpecs returned by a previous call yields equal specs.
func (c *Catalog) Normalize(decl Declaration) ([]*FieldSpec, error) {
	return normalizer{cat: c, reg: c.reg}.declaration(decl)
}

func (n normalizer) declaration(decl Declaration) ([]*FieldSpec, error) {
	out := make([]*FieldSpec, 0, len(decl))
	seen := make(map[string]struct{}, len(decl))
	for _, d := range decl {
		if d.Name == "" {
			return nil, definitionErrorf("", "field name must not be empty")
		}
		if _, dup := seen[d.Name]; dup {
			return nil, definitionErrorf(d.Name, "field is declared more than once")
		}
		seen[d.Name] = struct{}{}
		f, err := n.field(d.Name, d.Spec)
		if err != nil {
			return nil, err
		}
		f.Name = d.Name
		out = append(out, f)
	}
	return out, nil
}

func (n normalizer) field(path string, raw any) (*FieldSpec, error) {
	switch v := raw.(type) {
	case Type:
		if v.IsZero() {
			return nil, definitionErrorf(path, "field type is missing")
		}
		return n.finish(path, &FieldSpec{Type: v})
	case *Schema:
		t, err := n.schemaType(path, v)
		if err != nil {
			return nil, err
		}
		return n.finish(path, &FieldSpec{Type: t})
	case string:
		t, err := n.typeName(path, v)
		if err != nil {
			return nil, err
		}
		return n.finish(path, &FieldSpec{Type: t})
	case []any:
		return n.listShorthand(path, v)
	case Field:
		return n.longHand(path, v)
	case *Field:
		if v == nil {
			break
		}
		return n.longHand(path, *v)
	case map[string]any:
		f, err := decodeField(path, v)
		if err != nil {
			return nil, err
		}
		return n.longHand(path, f)
	case FieldSpec:
		return n.respec(path, &v)
	case *FieldSpec:
		if v == nil {
			break
		}
		return n.respec(path, v)
	}
	return nil, definitionErrorf(path, "unable to determine what to do with the field data, the format %T is not recognized", raw)
}

func (n normalizer) listShorthand(path string, v []any) (*FieldSpec, error) {
	switch len(v) {
	case 0:
		return n.finish(path, &FieldSpec{Type: List})
	case 1:
		elem, err := n.field(JoinPath(path, Wildcard), v[0])
		if err != nil {
			return nil, err
		}
		return n.finish(path, &FieldSpec{Type: List, Element: elem})
	}
	return nil, definitionErrorf(path, "list shorthand takes exactly one element declaration, got %d", len(v))
}

func (n normalizer) longHand(path string, f Field) (*FieldSpec, error) {
	if f.Type == nil {
		return nil, definitionErrorf(path, "field type is missing")
	}
	var (
		spec = &FieldSpec{
			Required:        f.Required,
			OneOf:           f.OneOf,
			ElementRequired: f.ElementRequired,
		}
		err error
	)
	switch t := f.Type.(type) {
	case Type:
		if t.IsZero() {
			return nil, definitionErrorf(path, "field type is missing")
		}
		spec.Type = t
	case *Schema:
		spec.Type, err = n.schemaType(path, t)
	case string:
		spec.Type, err = n.typeName(path, t)
	default:
		err = definitionErrorf(path, "the \"type\" field must be a type, a schema, or a type name, got %T", f.Type)
	}
	if err != nil {
		return nil, err
	}

	if f.Transform != nil {
		spec.Transform, err = n.transform(path, f.Transform)
		if err != nil {
			return nil, err
		}
	}
	if f.Default != nil {
		spec.Default, spec.HasDefault = f.Default, true
	}
	if f.Element != nil {
		if spec.Type.Kind != KindList {
			return nil, definitionErrorf(path, "an element type is only valid on list fields, the field type is %s", spec.Type)
		}
		spec.Element, err = n.field(JoinPath(path, Wildcard), f.Element)
		if err != nil {
			return nil, err
		}
	}
	return n.finish(path, spec)
}

// respec re-validates an already canonical spec.
func (n normalizer) respec(path string, in *FieldSpec) (*FieldSpec, error) {
	if in.Type.IsZero() {
		return nil, definitionErrorf(path, "field type is missing")
	}
	spec := in.clone()
	spec.check = nil
	if spec.Element != nil {
		elem, err := n.respec(JoinPath(path, Wildcard), spec.Element)
		if err != nil {
			return nil, err
		}
		elem.Name = ""
		spec.Element = elem
	}
	return n.finish(path, spec)
}

// finish fills defaults, checks the cross-field invariants, and resolves the
// field's validator.
func (n normalizer) finish(path string, spec *FieldSpec) (*FieldSpec, error) {
	if spec.Type.Kind == KindSchema {
		if !n.cat.owns(spec.Type.Schema) {
			return nil, definitionErrorf(path, "schema reference %s does not belong to this catalog", spec.Type)
		}
	}
	if spec.Type.Kind == KindList {
		if spec.Element == nil {
			spec.Element = &FieldSpec{Type: Any}
			spec.Element.check = n.resolve(spec.Element)
		}
	} else if spec.ElementRequired {
		return nil, definitionErrorf(path, "elementRequired is only valid on list fields, the field type is %s", spec.Type)
	}
	if spec.Required && spec.HasDefault {
		return nil, definitionErrorf(path, "cannot specify both required:true and a default since default values are only applied when a field is not explicitly specified")
	}
	spec.check = n.resolve(spec)
	if spec.HasDefault {
		if err := n.checkDefault(path, spec); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

func (n normalizer) resolve(spec *FieldSpec) ValidatorFunc {
	return n.reg.Resolve(spec.Type, spec.Required, spec.OneOf, nil)
}

// checkDefault runs the default value through the field's own checks. Nested
// schema defaults are validated against the schema when it is already defined.
func (n normalizer) checkDefault(path string, spec *FieldSpec) error {
	res := spec.check(spec.Default, path, ValidatorContext{})
	if res.Valid && spec.Type.Kind == KindList {
		for i, e := range listElems(spec.Default) {
			if res = spec.Element.check(e, indexPath(path, i), ValidatorContext{}); !res.Valid {
				break
			}
		}
	}
	if res.Valid && spec.Type.Kind == KindSchema {
		if target, ok := n.cat.defined(spec.Type.Schema); ok {
			res, _ = target.Validate(context.Background(), spec.Default)
		}
	}
	if res.Valid {
		return nil
	}
	if res.Code == CodeInvalidType && res.Path == path {
		return definitionErrorf(path, "cannot specify a default value of type %s when the field type is %s", res.ActualType, res.ExpectedType)
	}
	return &DefinitionError{Path: path, Reason: "the default value does not validate: " + res.Reason}
}

func (n normalizer) transform(path string, raw any) (TransformFunc, error) {
	if name, ok := raw.(string); ok {
		fn, found := n.reg.Transform(name)
		if !found {
			return nil, definitionErrorf(path, "the \"transform\" field names unknown transform %q", name)
		}
		return fn, nil
	}
	fn, ok := asTransform(raw)
	if !ok {
		return nil, definitionErrorf(path, "the \"transform\" field must be a function")
	}
	return fn, nil
}

func (n normalizer) schemaType(path string, s *Schema) (Type, error) {
	if s == nil || s.cat != n.cat {
		return Type{}, definitionErrorf(path, "nested schema must belong to the same catalog")
	}
	return SchemaRef(s.id), nil
}

// typeName resolves primitive names, custom type names, then schema names.
func (n normalizer) typeName(path, name string) (Type, error) {
	if t, ok := n.reg.ParseType(name); ok {
		return t, nil
	}
	if id, ok := n.cat.idByName(name); ok {
		return SchemaRef(id), nil
	}
	return Type{}, definitionErrorf(path, "unknown type name %q", name)
}

// decodeField maps a long-hand object onto Field using mapstructure.
func decodeField(path string, m map[string]any) (Field, error) {
	var in struct {
		Type            any   `mapstructure:"type"`
		Required        bool  `mapstructure:"required"`
		Default         any   `mapstructure:"default"`
		Transform       any   `mapstructure:"transform"`
		ElementType     any   `mapstructure:"elementType"`
		Element         any   `mapstructure:"element"`
		OneOf           []any `mapstructure:"oneOf"`
		ElementRequired bool  `mapstructure:"elementRequired"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &in,
	})
	if err != nil {
		return Field{}, err
	}
	if err := dec.Decode(m); err != nil {
		var me *mapstructure.Error
		if errors.As(err, &me) && len(me.Errors) > 0 {
			return Field{}, &DefinitionError{Path: path, Reason: me.Errors[0], Cause: err}
		}
		return Field{}, &DefinitionError{Path: path, Reason: err.Error(), Cause: err}
	}
	if in.ElementType != nil && in.Element != nil {
		return Field{}, definitionErrorf(path, "declare either elementType or element, not both")
	}
	if in.Element == nil {
		in.Element = in.ElementType
	}
	return Field{
		Type:            in.Type,
		Required:        in.Required,
		Default:         in.Default,
		Transform:       in.Transform,
		Element:         in.Element,
		OneOf:           in.OneOf,
		ElementRequired: in.ElementRequired,
	}, nil
}
