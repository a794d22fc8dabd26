package schema

import (
	"log/slog"
	"sort"
	"sync"
)

// Catalog is the arena that owns schemas. Every Schema gets a stable SchemaID
// from its Catalog; nested schema fields store that ID, which lets schemas
// reference themselves or each other. A Catalog is safe for concurrent use.
type Catalog struct {
	reg    *Registry
	logger *slog.Logger

	mu      sync.RWMutex
	schemas []*Schema // schemas[id-1]
	byName  map[string]SchemaID
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets the logger used for schema definition events.
func WithCatalogLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCatalog returns an empty Catalog resolving types through reg. A nil reg
// gets a fresh NewRegistry().
func NewCatalog(reg *Registry, opts ...CatalogOption) *Catalog {
	if reg == nil {
		reg = NewRegistry()
	}
	c := &Catalog{
		reg:    reg,
		logger: slog.New(slog.DiscardHandler),
		byName: map[string]SchemaID{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Registry returns the type registry used by this catalog.
func (c *Catalog) Registry() *Registry { return c.reg }

// Ref returns a reference to the schema named name, reserving its ID when the
// schema is not defined yet. This is how a schema refers to itself:
//
//	cat.Define("Node", schema.Fields("children", []any{cat.Ref("Node")}))
func (c *Catalog) Ref(name string) Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SchemaRef(c.reserveLocked(name).id)
}

func (c *Catalog) reserveLocked(name string) *Schema {
	if name != "" {
		if id, ok := c.byName[name]; ok {
			return c.schemas[id-1]
		}
	}
	s := &Schema{id: SchemaID(len(c.schemas) + 1), name: name, cat: c}
	c.schemas = append(c.schemas, s)
	if name != "" {
		c.byName[name] = s.id
	}
	return s
}

// Define normalizes decl into a new schema. A named schema may be defined once;
// an empty name defines an anonymous schema.
func (c *Catalog) Define(name string, decl Declaration, opts ...SchemaOption) (*Schema, error) {
	c.mu.Lock()
	s := c.reserveLocked(name)
	c.mu.Unlock()

	if s.isDefined() {
		return nil, definitionErrorf("", "schema %q is already defined", name)
	}
	// normalize unlocked: defaults of self-referencing fields look the schema up
	fields, err := c.Normalize(decl)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.defined {
		return nil, definitionErrorf("", "schema %q is already defined", name)
	}
	s.decl = append(Declaration(nil), decl...)
	s.setFields(fields)
	for _, o := range opts {
		o(s)
	}
	s.defined = true
	c.logger.Debug("schema defined", "schema", s.String(), "id", s.id, "fields", len(fields))
	return s, nil
}

// MustDefine is like Define but panics on error.
func (c *Catalog) MustDefine(name string, decl Declaration, opts ...SchemaOption) *Schema {
	s, err := c.Define(name, decl, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the defined schema named name.
func (c *Catalog) Lookup(name string) (*Schema, bool) {
	id, ok := c.idByName(name)
	if !ok {
		return nil, false
	}
	return c.defined(id)
}

// Schema returns the defined schema with the given id.
func (c *Catalog) Schema(id SchemaID) (*Schema, bool) { return c.defined(id) }

// Names lists the names of all named schemas, reserved or defined, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.byName))
	for n := range c.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Unresolved lists names that were referenced through Ref but never defined.
func (c *Catalog) Unresolved() []string {
	var out []string
	for _, n := range c.Names() {
		if _, ok := c.Lookup(n); !ok {
			out = append(out, n)
		}
	}
	return out
}

// TypeName renders t for humans: schema references by schema name.
func (c *Catalog) TypeName(t Type) string {
	if t.Kind == KindSchema {
		if s := c.slot(t.Schema); s != nil && s.name != "" {
			return s.name
		}
	}
	return t.String()
}

func (c *Catalog) idByName(name string) (SchemaID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	return id, ok
}

func (c *Catalog) owns(id SchemaID) bool { return c.slot(id) != nil }

// slot returns the schema with id whether or not it is defined yet.
func (c *Catalog) slot(id SchemaID) *Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id == 0 || int(id) > len(c.schemas) {
		return nil
	}
	return c.schemas[id-1]
}

func (c *Catalog) defined(id SchemaID) (*Schema, bool) {
	s := c.slot(id)
	if s == nil || !s.isDefined() {
		return nil, false
	}
	return s, true
}
