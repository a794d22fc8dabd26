package schema

import "reflect"

// Field is the long-hand declaration of a field.
//
// Type accepts a Type, a *Schema, or a type name ("string", "integer", or the
// name of a schema in the same Catalog). Transform accepts a TransformFunc,
// one of the plain func shapes below, or the name of a transform registered
// with the Registry. Element accepts any declaration shape and is only valid
// for list fields.
type Field struct {
	Type            any
	Required        bool
	Default         any
	Transform       any
	Element         any
	OneOf           []any
	ElementRequired bool
}

// FieldSpec is the canonical, normalized form of one field. FieldSpecs are
// immutable once their Schema is built.
type FieldSpec struct {
	Name            string
	Type            Type
	Required        bool
	Default         any
	HasDefault      bool
	Transform       TransformFunc
	Element         *FieldSpec // set iff Type.Kind == KindList
	OneOf           []any
	ElementRequired bool

	check ValidatorFunc
}

func (f *FieldSpec) clone() *FieldSpec {
	if f == nil {
		return nil
	}
	c := *f
	c.Element = f.Element.clone()
	if f.OneOf != nil {
		c.OneOf = append(f.OneOf[:0:0], f.OneOf...)
	}
	return &c
}

// Equal compares two specs structurally. Transforms compare by function
// identity.
func (f *FieldSpec) Equal(o *FieldSpec) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Name == o.Name &&
		f.Type == o.Type &&
		f.Required == o.Required &&
		f.HasDefault == o.HasDefault &&
		reflect.DeepEqual(f.Default, o.Default) &&
		funcPtr(f.Transform) == funcPtr(o.Transform) &&
		f.Element.Equal(o.Element) &&
		reflect.DeepEqual(f.OneOf, o.OneOf) &&
		f.ElementRequired == o.ElementRequired
}

func funcPtr(fn TransformFunc) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// asTransform accepts the supported function shapes for a transform.
func asTransform(v any) (TransformFunc, bool) {
	switch fn := v.(type) {
	case TransformFunc:
		return fn, fn != nil
	case func(value, parent, root any) (any, error):
		return fn, fn != nil
	case func(value, parent, root any) any:
		if fn == nil {
			return nil, false
		}
		return func(value, parent, root any) (any, error) { return fn(value, parent, root), nil }, true
	case func(value any) (any, error):
		if fn == nil {
			return nil, false
		}
		return func(value, _, _ any) (any, error) { return fn(value) }, true
	case func(value any) any:
		if fn == nil {
			return nil, false
		}
		return func(value, _, _ any) (any, error) { return fn(value), nil }, true
	}
	return nil, false
}
