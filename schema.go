package fncall

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
)

// ParameterType is the declared type of a parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeInteger ParameterType = "integer"
	TypeNumber  ParameterType = "number"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
	// TypeEnum is the legacy declaration type for "any value from Enum".
	TypeEnum ParameterType = "enum"
)

func (t ParameterType) valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeEnum:
		return true
	}
	return false
}

// ParameterSpec describes one parameter. Items applies to arrays, Properties to objects.
// Minimum/Maximum bound numeric values; Pattern is a regular expression strings must match.
type ParameterSpec struct {
	Type        ParameterType            `json:"type"`
	Description string                   `json:"description,omitempty"`
	Required    bool                     `json:"required,omitempty"`
	Enum        []any                    `json:"enum,omitempty"`
	Items       *ParameterSpec           `json:"items,omitempty"`
	Properties  map[string]ParameterSpec `json:"properties,omitempty"`
	Minimum     *float64                 `json:"minimum,omitempty"`
	Maximum     *float64                 `json:"maximum,omitempty"`
	Pattern     string                   `json:"pattern,omitempty"`
}

// Schema describes one callable function.
// A parameter is required when it is listed in Required or its ParameterSpec.Required is set.
type Schema struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Parameters  map[string]ParameterSpec `json:"parameters"`
	Required    []string                 `json:"required,omitempty"`
}

// RequiredNames returns the reconciled required set: Required in declaration order,
// then parameters flagged Required (sorted), without duplicates.
func (s Schema) RequiredNames() []string {
	out := make([]string, 0, len(s.Required))
	seen := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.Parameters)) {
		if s.Parameters[name].Required && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// IsRequired reports whether the named parameter is mandatory.
func (s Schema) IsRequired(name string) bool {
	return slices.Contains(s.RequiredNames(), name)
}

// ParameterNames returns declared parameter names sorted.
func (s Schema) ParameterNames() []string {
	return slices.Sorted(maps.Keys(s.Parameters))
}

// Clone returns a deep copy. nil maps and slices stay nil.
func (s Schema) Clone() Schema {
	out := s
	out.Required = slices.Clone(s.Required)
	out.Parameters = cloneParams(s.Parameters)
	return out
}

func cloneParams(in map[string]ParameterSpec) map[string]ParameterSpec {
	if in == nil {
		return nil
	}
	out := make(map[string]ParameterSpec, len(in))
	for k, p := range in {
		out[k] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of the parameter spec.
func (p ParameterSpec) Clone() ParameterSpec {
	out := p
	out.Enum = slices.Clone(p.Enum)
	if p.Items != nil {
		items := p.Items.Clone()
		out.Items = &items
	}
	out.Properties = cloneParams(p.Properties)
	if p.Minimum != nil {
		v := *p.Minimum
		out.Minimum = &v
	}
	if p.Maximum != nil {
		v := *p.Maximum
		out.Maximum = &v
	}
	return out
}

// Check verifies schema invariants: a name, known parameter types, required names that are
// declared, enum values for TypeEnum, compilable patterns and ordered bounds.
func (s Schema) Check() error {
	if s.Name == "" {
		return &SchemaError{Field: "name", Reason: "name must not be empty"}
	}
	for _, name := range s.Required {
		if _, ok := s.Parameters[name]; !ok {
			return &SchemaError{
				Function: s.Name,
				Field:    "required",
				Reason:   fmt.Sprintf("required parameter %q is not declared in parameters", name),
			}
		}
	}
	for _, name := range s.ParameterNames() {
		if name == "" {
			return &SchemaError{Function: s.Name, Field: "parameters", Reason: "parameter name must not be empty"}
		}
		if err := s.Parameters[name].check("parameters." + name); err != nil {
			err.Function = s.Name
			return err
		}
	}
	return nil
}

func (p ParameterSpec) check(path string) *SchemaError {
	if !p.Type.valid() {
		return &SchemaError{Field: path + ".type", Reason: fmt.Sprintf("unsupported parameter type %q", p.Type)}
	}
	if p.Type == TypeEnum && len(p.Enum) == 0 {
		return &SchemaError{Field: path + ".enum", Reason: "enum parameter must declare enum values"}
	}
	for i, e := range p.Enum {
		if _, err := ValueOf(e); err != nil {
			return &SchemaError{Field: fmt.Sprintf("%s.enum[%d]", path, i), Reason: err.Error()}
		}
	}
	if p.Items != nil && p.Type != TypeArray {
		return &SchemaError{Field: path + ".items", Reason: "items is only allowed on array parameters"}
	}
	if p.Properties != nil && p.Type != TypeObject {
		return &SchemaError{Field: path + ".properties", Reason: "properties is only allowed on object parameters"}
	}
	if p.Pattern != "" {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return &SchemaError{Field: path + ".pattern", Reason: err.Error()}
		}
	}
	if p.Minimum != nil && p.Maximum != nil && *p.Minimum > *p.Maximum {
		return &SchemaError{Field: path, Reason: fmt.Sprintf("minimum %v is greater than maximum %v", *p.Minimum, *p.Maximum)}
	}
	if p.Items != nil {
		if err := p.Items.check(path + ".items"); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(p.Properties)) {
		if err := p.Properties[name].check(path + ".properties." + name); err != nil {
			return err
		}
	}
	return nil
}

// JSONSchema renders the parameters as a JSON Schema object
// ({"type":"object","properties":...,"required":[...]}), the shape model tool APIs expect.
func (s Schema) JSONSchema() map[string]any {
	m, err := toMap(s.jsonSchema())
	if err != nil {
		// jsonschema.Schema built from checked specs always marshals.
		panic("fncall: marshal json schema: " + err.Error())
	}
	return m
}

// StrictJSONSchema is JSONSchema with additionalProperties: false on every object and every
// property required (OpenAI Structured Outputs).
func (s Schema) StrictJSONSchema() map[string]any {
	m := s.JSONSchema()
	applyStrictMode(m)
	return m
}

// Declaration renders the schema in the function declaration wire format with JSON Schema parameters.
func (s Schema) Declaration() map[string]any {
	return map[string]any{
		"name":        s.Name,
		"description": s.Description,
		"parameters":  s.JSONSchema(),
	}
}

func (s Schema) jsonSchema() *jsonschema.Schema {
	root := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(s.Parameters)),
		Required:   s.RequiredNames(),
	}
	for name, p := range s.Parameters {
		root.Properties[name] = p.jsonSchema()
	}
	return root
}

func (p ParameterSpec) jsonSchema() *jsonschema.Schema {
	js := &jsonschema.Schema{
		Description: p.Description,
		Enum:        slices.Clone(p.Enum),
		Minimum:     p.Minimum,
		Maximum:     p.Maximum,
		Pattern:     p.Pattern,
	}
	if p.Type != TypeEnum {
		js.Type = string(p.Type)
	}
	if p.Items != nil {
		js.Items = p.Items.jsonSchema()
	}
	if len(p.Properties) > 0 {
		js.Properties = make(map[string]*jsonschema.Schema, len(p.Properties))
		for _, name := range slices.Sorted(maps.Keys(p.Properties)) {
			prop := p.Properties[name]
			js.Properties[name] = prop.jsonSchema()
			if prop.Required {
				js.Required = append(js.Required, name)
			}
		}
	}
	return js
}

// resolveJSONSchema compiles the exported JSON Schema; registration uses it to make sure
// what the model is shown is a valid schema.
func (s Schema) resolveJSONSchema() (*jsonschema.Resolved, error) {
	return s.jsonSchema().Resolve(nil)
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// walkSchema recursively visits every map node in the schema tree (including $defs and definitions).
func walkSchema(schemaMap map[string]any, visit func(map[string]any)) {
	if schemaMap == nil {
		return
	}
	visit(schemaMap)
	for _, val := range schemaMap {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m2, ok := item.(map[string]any); ok {
					walkSchema(m2, visit)
				}
			}
		}
	}
}

// applyStrictMode sets additionalProperties: false and requires every property of every object.
func applyStrictMode(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		if n["type"] != "object" {
			return
		}
		n["additionalProperties"] = false
		props, _ := n["properties"].(map[string]any)
		keys := slices.Sorted(maps.Keys(props))
		required := make([]any, len(keys))
		for i, k := range keys {
			required[i] = k
		}
		n["required"] = required
		if props == nil {
			n["properties"] = map[string]any{}
		}
	})
}

// stripSchemaIDs removes $schema, id and $id so reflected schemas embed cleanly into declarations.
func stripSchemaIDs(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		delete(n, "id")
		delete(n, "$id")
		delete(n, "$schema")
	})
}
