package jsonschema

import gojson "github.com/goccy/go-json"

// Draft is the dialect written into $schema by FromSchema.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	Dialect string `json:"$schema,omitempty"`
	Ref     string `json:"$ref,omitempty"`
	Title   string `json:"title,omitempty"`
	Comment string `json:"$comment,omitempty"`

	// Core. Type is a string, or a list of strings for nullable values.
	Type    any    `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Default any    `json:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty"`

	AnyOf []*Schema `json:"anyOf,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// MarshalIndent renders s as indented JSON.
func (s *Schema) MarshalIndent() ([]byte, error) {
	return gojson.MarshalIndent(s, "", "  ")
}
