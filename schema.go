package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// HelperFunc is a named helper attached to a schema. It receives a model
// (usually a document validated against the schema) and free arguments.
type HelperFunc func(model any, args ...any) (any, error)

// Schema is a named, ordered set of normalized fields. A Schema lives in a
// Catalog and is referenced from other schemas by its SchemaID.
type Schema struct {
	id  SchemaID
	cat *Catalog

	mu         sync.RWMutex
	name       string
	primaryKey string
	helpers    map[string]HelperFunc
	decl       Declaration
	fields     []*FieldSpec
	index      map[string]int
	defined    bool
}

// SchemaOption configures a Schema at definition time.
type SchemaOption func(*Schema)

// WithPrimaryKey names the field that identifies documents of this schema.
func WithPrimaryKey(field string) SchemaOption {
	return func(s *Schema) { s.primaryKey = field }
}

// WithHelper attaches a named helper function.
func WithHelper(name string, fn HelperFunc) SchemaOption {
	return func(s *Schema) {
		if s.helpers == nil {
			s.helpers = map[string]HelperFunc{}
		}
		s.helpers[name] = fn
	}
}

// WithHelpers attaches several helpers at once.
func WithHelpers(helpers map[string]HelperFunc) SchemaOption {
	return func(s *Schema) {
		for n, fn := range helpers {
			WithHelper(n, fn)(s)
		}
	}
}

// ID returns the schema's identifier inside its Catalog.
func (s *Schema) ID() SchemaID { return s.id }

// Type returns the tag that references this schema from a field.
func (s *Schema) Type() Type { return SchemaRef(s.id) }

// Catalog returns the owning catalog.
func (s *Schema) Catalog() *Catalog { return s.cat }

// Name returns the schema name; anonymous schemas return "".
func (s *Schema) Name() string { return s.name }

func (s *Schema) String() string {
	if s.name != "" {
		return s.name
	}
	return SchemaRef(s.id).String()
}

// PrimaryKey returns the primary key field name, if any.
func (s *Schema) PrimaryKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primaryKey
}

// Helper invokes the helper registered under name.
func (s *Schema) Helper(name string, model any, args ...any) (any, error) {
	s.mu.RLock()
	fn, ok := s.helpers[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("schema %s: no helper named %q", s, name)
	}
	return fn(model, args...)
}

// HelperNames lists the helper names in sorted order.
func (s *Schema) HelperNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.helpers))
	for n := range s.helpers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Fields returns the normalized fields in declaration order. The returned
// specs must not be modified.
func (s *Schema) Fields() []*FieldSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*FieldSpec(nil), s.fields...)
}

// Field returns the normalized field called name.
func (s *Schema) Field(name string) (*FieldSpec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Declaration returns a copy of the raw declaration the schema was built from.
func (s *Schema) Declaration() Declaration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(Declaration(nil), s.decl...)
}

// Add merges decl into the schema and re-normalizes it. Fields with an
// existing name are replaced in place; new fields are appended. On error the
// schema is left unchanged.
func (s *Schema) Add(decl Declaration) error {
	s.mu.RLock()
	if !s.defined {
		s.mu.RUnlock()
		return definitionErrorf("", "schema %s is not defined yet", s)
	}
	merged := s.decl.Merge(decl)
	s.mu.RUnlock()

	fields, err := s.cat.Normalize(merged)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.decl = merged
	s.setFields(fields)
	s.mu.Unlock()
	s.cat.logger.Debug("schema extended", "schema", s.String(), "fields", len(fields))
	return nil
}

// IsValid reports whether value validates against the schema.
func (s *Schema) IsValid(ctx context.Context, value any) bool {
	res, _ := s.Validate(ctx, value)
	return res.Valid
}

// setFields replaces the normalized fields. Callers hold s.mu.
func (s *Schema) setFields(fields []*FieldSpec) {
	s.fields = fields
	s.index = make(map[string]int, len(fields))
	for i, f := range fields {
		s.index[f.Name] = i
	}
}

func (s *Schema) isDefined() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defined
}

// snapshot returns the fields and index under one read lock so a concurrent
// Add cannot tear a validation pass.
func (s *Schema) snapshot() ([]*FieldSpec, map[string]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields, s.index
}
