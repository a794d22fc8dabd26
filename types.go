package schema

import "strconv"

// Kind is the discriminant of a Type.
type Kind uint8

const (
	kindInvalid   Kind = iota // zero value: no type declared
	KindText                  // string values
	KindNumeric               // any Go integer/float kind or json.Number
	KindBoolean               // bool values
	KindMap                   // free-form maps and structs
	KindCallable              // func values
	KindList                  // ordered lists (slices/arrays); carries an element FieldSpec
	KindTimestamp             // time.Time values
	KindSchema                // reference to a Schema in a Catalog
	KindCustom                // named custom type from a Registry
	KindAny                   // accepts everything
)

var kindNames = [...]string{
	kindInvalid:   "invalid",
	KindText:      "string",
	KindNumeric:   "number",
	KindBoolean:   "boolean",
	KindMap:       "object",
	KindCallable:  "function",
	KindList:      "array",
	KindTimestamp: "timestamp",
	KindSchema:    "schema",
	KindCustom:    "custom",
	KindAny:       "any",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// SchemaID identifies a Schema inside its Catalog. IDs start at 1; zero means
// "no schema".
type SchemaID uint32

// Type is a comparable type tag. Only one of the payload fields is meaningful,
// selected by Kind: Schema for KindSchema, Name for KindCustom.
type Type struct {
	Kind   Kind
	Schema SchemaID
	Name   string
}

// Primitive tags.
var (
	Text      = Type{Kind: KindText}
	Numeric   = Type{Kind: KindNumeric}
	Boolean   = Type{Kind: KindBoolean}
	Map       = Type{Kind: KindMap}
	Callable  = Type{Kind: KindCallable}
	List      = Type{Kind: KindList}
	Timestamp = Type{Kind: KindTimestamp}
	Any       = Type{Kind: KindAny}
)

// Built-in custom tags, installed by NewRegistry.
var (
	Integer  = Custom("integer")
	Long     = Custom("long")
	Float    = Custom("float")
	Double   = Custom("double")
	Byte     = Custom("byte")
	Binary   = Custom("binary")
	Date     = Custom("date")
	DateTime = Custom("date-time")
	Password = Custom("password")
)

// Custom returns the tag of a custom type registered under name.
func Custom(name string) Type { return Type{Kind: KindCustom, Name: name} }

// SchemaRef returns the tag referencing the schema with the given id.
func SchemaRef(id SchemaID) Type { return Type{Kind: KindSchema, Schema: id} }

// IsZero reports whether no type was declared.
func (t Type) IsZero() bool { return t.Kind == kindInvalid }

// IsPrimitive reports whether t is one of the closed primitive tags.
func (t Type) IsPrimitive() bool {
	switch t.Kind {
	case KindText, KindNumeric, KindBoolean, KindMap, KindCallable, KindList, KindTimestamp:
		return true
	}
	return false
}

// String renders the tag: primitive names, the custom name, or "schema#<id>".
func (t Type) String() string {
	switch t.Kind {
	case KindCustom:
		return t.Name
	case KindSchema:
		return "schema#" + strconv.FormatUint(uint64(t.Schema), 10)
	}
	return t.Kind.String()
}

// primitiveNames maps the names accepted in file-based declarations to tags.
var primitiveNames = map[string]Type{
	"string":    Text,
	"text":      Text,
	"number":    Numeric,
	"numeric":   Numeric,
	"boolean":   Boolean,
	"bool":      Boolean,
	"object":    Map,
	"map":       Map,
	"function":  Callable,
	"callable":  Callable,
	"array":     List,
	"list":      List,
	"timestamp": Timestamp,
	"time":      Timestamp,
}
