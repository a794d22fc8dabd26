package schema

// ObjectBuilder assembles a schema declaration fluently:
//
//	user := cat.Object("User").
//		Field("id", schema.Text).Required().
//		Field("role", schema.Text).Default("member").
//		Field("tags", []any{schema.Text}).
//		PrimaryKey("id").
//		MustBuild()
type ObjectBuilder struct {
	cat  *Catalog
	name string
	decl Declaration
	opts []SchemaOption
}

// FieldStep refines the field added last.
type FieldStep struct {
	b *ObjectBuilder
	i int
}

// Object starts a builder for a schema called name ("" for anonymous).
func (c *Catalog) Object(name string) *ObjectBuilder {
	return &ObjectBuilder{cat: c, name: name}
}

// Field appends a field using any declaration shape.
func (b *ObjectBuilder) Field(name string, spec any) *FieldStep {
	b.decl = append(b.decl, Decl{Name: name, Spec: spec})
	return &FieldStep{b: b, i: len(b.decl) - 1}
}

// PrimaryKey names the primary key field.
func (b *ObjectBuilder) PrimaryKey(field string) *ObjectBuilder {
	b.opts = append(b.opts, WithPrimaryKey(field))
	return b
}

// Helper attaches a named helper.
func (b *ObjectBuilder) Helper(name string, fn HelperFunc) *ObjectBuilder {
	b.opts = append(b.opts, WithHelper(name, fn))
	return b
}

// Build defines the schema in the builder's catalog.
func (b *ObjectBuilder) Build() (*Schema, error) {
	return b.cat.Define(b.name, b.decl, b.opts...)
}

// MustBuild is like Build but panics on error.
func (b *ObjectBuilder) MustBuild() *Schema {
	return b.cat.MustDefine(b.name, b.decl, b.opts...)
}

// long promotes the current field to its long-hand form.
func (f *FieldStep) long() *Field {
	d := &f.b.decl[f.i]
	switch v := d.Spec.(type) {
	case Field:
		d.Spec = &v
	case *Field:
	case []any:
		fd := &Field{Type: List}
		if len(v) == 1 {
			fd.Element = v[0]
		}
		d.Spec = fd
	default:
		d.Spec = &Field{Type: v}
	}
	return d.Spec.(*Field)
}

// Required marks the field required.
func (f *FieldStep) Required() *ObjectBuilder {
	f.long().Required = true
	return f.b
}

// Default sets the value applied when the field is missing.
func (f *FieldStep) Default(v any) *ObjectBuilder {
	f.long().Default = v
	return f.b
}

// Transform sets the field transform: a TransformFunc, a supported func shape,
// or a registered transform name.
func (f *FieldStep) Transform(fn any) *ObjectBuilder {
	f.long().Transform = fn
	return f.b
}

// OneOf restricts the field to the given values.
func (f *FieldStep) OneOf(values ...any) *ObjectBuilder {
	f.long().OneOf = values
	return f.b
}

// ElementRequired demands at least one list element.
func (f *FieldStep) ElementRequired() *ObjectBuilder {
	f.long().ElementRequired = true
	return f.b
}

func (f *FieldStep) Field(name string, spec any) *FieldStep           { return f.b.Field(name, spec) }
func (f *FieldStep) PrimaryKey(field string) *ObjectBuilder           { return f.b.PrimaryKey(field) }
func (f *FieldStep) Helper(name string, fn HelperFunc) *ObjectBuilder { return f.b.Helper(name, fn) }
func (f *FieldStep) Build() (*Schema, error)                          { return f.b.Build() }
func (f *FieldStep) MustBuild() *Schema                               { return f.b.MustBuild() }
