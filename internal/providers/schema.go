package providers

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/JaimeStill/scrivener/pkg/formatting"
)

// Schema is a named JSON schema for structured model output.
type Schema struct {
	Name       string
	Definition map[string]any
	compiled   *gojsonschema.Schema
}

// NewSchema compiles definition.
func NewSchema(name string, definition map[string]any) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{Name: name, Definition: definition, compiled: compiled}, nil
}

// MustSchema is NewSchema for package-level definitions.
func MustSchema(name string, definition map[string]any) *Schema {
	s, err := NewSchema(name, definition)
	if err != nil {
		panic(err)
	}
	return s
}

// Properties returns the schema's top-level properties.
func (s *Schema) Properties() map[string]map[string]any {
	out := make(map[string]map[string]any)
	props, _ := s.Definition["properties"].(map[string]any)
	for name, v := range props {
		if prop, ok := v.(map[string]any); ok {
			out[name] = prop
		}
	}
	return out
}

// Required returns the schema's required property names.
func (s *Schema) Required() []string {
	switch v := s.Definition["required"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if name, ok := item.(string); ok {
				out = append(out, name)
			}
		}
		return out
	}
	return nil
}

// Validate checks raw JSON against the schema.
func (s *Schema) Validate(raw string) error {
	result, err := s.compiled.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return &SchemaError{Schema: s.Name, Err: err}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &SchemaError{Schema: s.Name, Problems: problems}
}

// Decode extracts the JSON object from resp, validates it against schema,
// and unmarshals it into T. Every failure is a *SchemaError.
func Decode[T any](resp Response, schema *Schema) (T, error) {
	var out T

	raw, err := formatting.Extract(resp.Text)
	if err != nil {
		return out, &SchemaError{Schema: schema.Name, Err: err}
	}

	if err := schema.Validate(raw); err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, &SchemaError{Schema: schema.Name, Err: err}
	}
	return out, nil
}
