package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	schema "github.com/Irrelon/irrelon-schema"
)

// ParseYAML parses a YAML declaration document.
func ParseYAML(data []byte) (*Document, error) {
	root, err := parseYAMLNode(data)
	if err != nil {
		return nil, fmt.Errorf("source: parse yaml: %w", err)
	}
	return buildDocument(root)
}

// ParseJSON parses a JSON declaration document.
func ParseJSON(data []byte) (*Document, error) {
	root, err := parseJSONNode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("source: parse json: %w", err)
	}
	return buildDocument(root)
}

// LoadYAML parses a YAML declaration document and applies it to cat.
func LoadYAML(cat *schema.Catalog, data []byte) ([]*schema.Schema, error) {
	doc, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return doc.Apply(cat)
}

// LoadJSON parses a JSON declaration document and applies it to cat.
func LoadJSON(cat *schema.Catalog, data []byte) ([]*schema.Schema, error) {
	doc, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return doc.Apply(cat)
}

// LoadFile loads a declaration file, choosing the format by extension:
// .json is JSON, anything else YAML.
func LoadFile(cat *schema.Catalog, path string) ([]*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if isJSON(path) {
		return LoadJSON(cat, data)
	}
	return LoadYAML(cat, data)
}

// DecodeJSON decodes one JSON document. Numbers decode as json.Number so no
// precision is lost before validation.
func DecodeJSON(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	return v, nil
}

// DecodeYAML decodes one YAML document. An empty input decodes to nil.
func DecodeYAML(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	return v, nil
}

// DecodeFile decodes a data file, choosing the format by extension.
func DecodeFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	defer f.Close()
	if isJSON(path) {
		return DecodeJSON(f)
	}
	return DecodeYAML(f)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
