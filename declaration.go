package schema

import (
	"fmt"
	"sort"
)

// Decl declares one field. Spec takes any of the declaration shapes:
//
//	Text                       bare primitive or custom tag
//	other / cat.Ref("Node")    bare nested schema reference
//	[]any{Text}, []any{}       list shorthand
//	Field{...}                 long-hand
//	map[string]any{"type": ..} long-hand, as decoded from YAML or JSON
//	"string", "Node"           type or schema name
type Decl struct {
	Name string
	Spec any
}

// Declaration is an ordered set of field declarations.
type Declaration []Decl

// Fields builds a Declaration from name/spec pairs:
//
//	schema.Fields("id", schema.Text, "tags", []any{schema.Text})
//
// It panics when pairs is malformed; use it for literals.
func Fields(pairs ...any) Declaration {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("schema: Fields needs name/spec pairs, got %d values", len(pairs)))
	}
	d := make(Declaration, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("schema: Fields argument %d must be a field name, got %T", i, pairs[i]))
		}
		d = append(d, Decl{Name: name, Spec: pairs[i+1]})
	}
	return d
}

// DeclarationFromMap converts an unordered map into a Declaration sorted by
// field name.
func DeclarationFromMap(m map[string]any) Declaration {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	d := make(Declaration, 0, len(names))
	for _, n := range names {
		d = append(d, Decl{Name: n, Spec: m[n]})
	}
	return d
}

// Merge returns d with the entries of more applied: a same-named entry is
// replaced in place, new names are appended.
func (d Declaration) Merge(more Declaration) Declaration {
	out := append(Declaration(nil), d...)
	pos := make(map[string]int, len(out))
	for i, e := range out {
		pos[e.Name] = i
	}
	for _, e := range more {
		if i, ok := pos[e.Name]; ok {
			out[i] = e
			continue
		}
		pos[e.Name] = len(out)
		out = append(out, e)
	}
	return out
}
