// Package source loads schema declarations and data documents from YAML and
// JSON.
//
// A declaration document has two optional sections:
//
//	types:
//	  email: {type: string, tag: email}
//	  port:  {type: integer, format: int32}
//	schemas:
//	  User:
//	    primaryKey: id
//	    fields:
//	      id: {type: string, required: true}
//	      mail: email
//	      tags: [string]
//	      address: Address
//	  Address:
//	    fields:
//	      street: string
//
// Field order follows the document. Schemas may reference each other by name
// in any order.
package source

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	schema "github.com/Irrelon/irrelon-schema"
)

// TypeDecl declares a custom type.
type TypeDecl struct {
	Name   string `mapstructure:"-"`
	Type   string `mapstructure:"type"`
	Format string `mapstructure:"format"`
	Tag    string `mapstructure:"tag"`
}

// SchemaDecl declares one named schema.
type SchemaDecl struct {
	Name       string
	PrimaryKey string
	Fields     schema.Declaration
}

// Document is a parsed declaration document.
type Document struct {
	Types   []TypeDecl
	Schemas []SchemaDecl
}

// ErrDocument is matched (errors.Is) by structural errors in a document.
var ErrDocument = errors.New("source: invalid declaration document")

func docErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrDocument}, args...)...)
}

func buildDocument(root *node) (*Document, error) {
	if root.kind != objectNode {
		return nil, docErrorf("the top level must be a mapping")
	}
	doc := &Document{}
	for i, key := range root.keys {
		sec := root.vals[i]
		switch key {
		case "types":
			if err := doc.readTypes(sec); err != nil {
				return nil, err
			}
		case "schemas":
			if err := doc.readSchemas(sec); err != nil {
				return nil, err
			}
		default:
			return nil, docErrorf("unknown section %q", key)
		}
	}
	return doc, nil
}

func (d *Document) readTypes(sec *node) error {
	if sec.kind != objectNode {
		return docErrorf("types must be a mapping")
	}
	for i, name := range sec.keys {
		var td TypeDecl
		if base, ok := sec.vals[i].value.(string); ok && sec.vals[i].kind == scalarNode {
			d.Types = append(d.Types, TypeDecl{Name: name, Type: base})
			continue
		}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{ErrorUnused: true, Result: &td})
		if err != nil {
			return err
		}
		if err := dec.Decode(sec.vals[i].plain()); err != nil {
			return docErrorf("type %q: %v", name, err)
		}
		if td.Type == "" {
			return docErrorf("type %q: missing base type", name)
		}
		td.Name = name
		d.Types = append(d.Types, td)
	}
	return nil
}

func (d *Document) readSchemas(sec *node) error {
	if sec.kind != objectNode {
		return docErrorf("schemas must be a mapping")
	}
	for i, name := range sec.keys {
		body := sec.vals[i]
		if body.kind != objectNode {
			return docErrorf("schema %q must be a mapping", name)
		}
		sd := SchemaDecl{Name: name}
		for j, key := range body.keys {
			v := body.vals[j]
			switch key {
			case "primaryKey":
				pk, ok := v.value.(string)
				if v.kind != scalarNode || !ok {
					return docErrorf("schema %q: primaryKey must be a string", name)
				}
				sd.PrimaryKey = pk
			case "fields":
				if v.kind != objectNode {
					return docErrorf("schema %q: fields must be a mapping", name)
				}
				for k, field := range v.keys {
					sd.Fields = append(sd.Fields, schema.Decl{Name: field, Spec: fieldSpec(v.vals[k])})
				}
			default:
				return docErrorf("schema %q: unknown key %q", name, key)
			}
		}
		d.Schemas = append(d.Schemas, sd)
	}
	return nil
}

// fieldSpec maps a document node onto a declaration shape: scalars are type
// names, a one-item list is the list shorthand, and a mapping is the long-hand
// form whose element declaration is converted recursively.
func fieldSpec(n *node) any {
	switch n.kind {
	case listNode:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = fieldSpec(it)
		}
		return out
	case objectNode:
		out := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			if k == "element" || k == "elementType" {
				out[k] = fieldSpec(n.vals[i])
				continue
			}
			out[k] = n.vals[i].plain()
		}
		return out
	}
	return n.value
}

// Apply registers the document's custom types with the catalog's registry and
// defines its schemas in document order. All schema names are reserved first,
// so fields may name schemas declared further down.
func (d *Document) Apply(cat *schema.Catalog) ([]*schema.Schema, error) {
	reg := cat.Registry()
	for _, td := range d.Types {
		base, ok := reg.ParseType(td.Type)
		if !ok {
			return nil, docErrorf("type %q: unknown base type %q", td.Name, td.Type)
		}
		err := reg.Register(schema.CustomType{Name: td.Name, Base: base, Format: td.Format, Tag: td.Tag})
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", td.Name, err)
		}
	}
	for _, sd := range d.Schemas {
		cat.Ref(sd.Name)
	}
	out := make([]*schema.Schema, 0, len(d.Schemas))
	for _, sd := range d.Schemas {
		var opts []schema.SchemaOption
		if sd.PrimaryKey != "" {
			opts = append(opts, schema.WithPrimaryKey(sd.PrimaryKey))
		}
		s, err := cat.Define(sd.Name, sd.Fields, opts...)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", sd.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}
