package schema

import "sort"

// Flat maps dotted schema paths to their declared type. List elements appear
// under the wildcard segment: "tags" -> List, "tags.$" -> Text.
type Flat map[string]Type

// Paths returns the flattened paths in sorted order.
func (f Flat) Paths() []string {
	out := make([]string, 0, len(f))
	for p := range f {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the type declared for a data path; numeric segments match
// list elements.
func (f Flat) Lookup(path string) (Type, bool) {
	t, ok := f[ToWildcard(path)]
	return t, ok
}

// Strings renders every type with cat.TypeName, so schema references show
// their schema name.
func (f Flat) Strings(cat *Catalog) map[string]string {
	out := make(map[string]string, len(f))
	for p, t := range f {
		if cat != nil {
			out[p] = cat.TypeName(t)
		} else {
			out[p] = t.String()
		}
	}
	return out
}

// Flatten maps every path reachable in the schema to its type. A nested
// schema is expanded the first time it is reached; later references,
// including references back to this schema, are recorded without expansion.
func (s *Schema) Flatten() Flat {
	out := Flat{}
	visited := map[SchemaID]bool{s.id: true}
	s.flattenInto("", out, visited)
	return out
}

func (s *Schema) flattenInto(prefix string, out Flat, visited map[SchemaID]bool) {
	fields, _ := s.snapshot()
	for _, f := range fields {
		s.flattenField(f, JoinPath(prefix, f.Name), out, visited)
	}
}

func (s *Schema) flattenField(f *FieldSpec, path string, out Flat, visited map[SchemaID]bool) {
	out[path] = f.Type
	switch f.Type.Kind {
	case KindList:
		elem := f.Element
		if elem == nil {
			out[JoinPath(path, Wildcard)] = Any
			return
		}
		s.flattenField(elem, JoinPath(path, Wildcard), out, visited)
	case KindSchema:
		if visited[f.Type.Schema] {
			return
		}
		target, ok := s.cat.defined(f.Type.Schema)
		if !ok {
			return
		}
		visited[f.Type.Schema] = true
		target.flattenInto(path, out, visited)
	}
}
