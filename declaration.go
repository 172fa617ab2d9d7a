package fncall

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed declaration.schema.json
var declarationMetaSchema []byte

const declarationSchemaURL = "https://github.com/skosovsky/fncall/declaration.schema.json"

var compileDeclarationSchema = sync.OnceValues(func() (*santhosh.Schema, error) {
	doc, err := santhosh.UnmarshalJSON(bytes.NewReader(declarationMetaSchema))
	if err != nil {
		return nil, err
	}
	c := santhosh.NewCompiler()
	if err := c.AddResource(declarationSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(declarationSchemaURL)
})

// ParseDeclaration parses a function declaration in the wire format:
//
//	{"name": "...", "description": "...",
//	 "parameters": {"city": {"type": "string", "description": "...", "required": true}},
//	 "required": ["city"]}
//
// parameters may also be a JSON Schema object ({"type":"object","properties":{...},"required":[...]}).
// The raw document is checked against the declaration meta-schema first, then parsed into a Schema
// and checked with Schema.Check. All failures are *SchemaError.
func ParseDeclaration(raw []byte) (Schema, error) {
	doc, err := santhosh.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Schema{}, &SchemaError{Reason: "malformed declaration JSON: " + err.Error()}
	}
	meta, err := compileDeclarationSchema()
	if err != nil {
		return Schema{}, fmt.Errorf("compile declaration meta-schema: %w", err)
	}
	if err := meta.Validate(doc); err != nil {
		return Schema{}, &SchemaError{Function: declarationName(doc), Reason: flattenValidationError(err)}
	}
	native, err := decodeJSONValue(raw)
	if err != nil {
		return Schema{}, &SchemaError{Reason: err.Error()}
	}
	m, _ := native.(map[string]any)
	s, err := schemaFromMap(m)
	if err != nil {
		return Schema{}, err
	}
	if err := s.Check(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// DeclarationFromMap is ParseDeclaration for an already decoded document (JSON or YAML).
func DeclarationFromMap(m map[string]any) (Schema, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return Schema{}, &SchemaError{Function: stringField(m, "name"), Reason: "declaration is not JSON-encodable: " + err.Error()}
	}
	return ParseDeclaration(raw)
}

func declarationName(doc any) string {
	if m, ok := doc.(map[string]any); ok {
		return stringField(m, "name")
	}
	return ""
}

func flattenValidationError(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}

func schemaFromMap(m map[string]any) (Schema, error) {
	s := Schema{
		Name:        stringField(m, "name"),
		Description: stringField(m, "description"),
	}
	params, _ := m["parameters"].(map[string]any)
	if isJSONSchemaObject(params) {
		props, _ := params["properties"].(map[string]any)
		spec, err := parameterFromMap(s.Name, "parameters", map[string]any{
			"type":       "object",
			"properties": props,
			"required":   params["required"],
		})
		if err != nil {
			return Schema{}, err
		}
		s.Parameters = spec.Properties
		for _, name := range slices.Sorted(maps.Keys(s.Parameters)) {
			if p := s.Parameters[name]; p.Required {
				s.Required = append(s.Required, name)
			}
		}
	} else {
		s.Parameters = make(map[string]ParameterSpec, len(params))
		for _, name := range slices.Sorted(maps.Keys(params)) {
			pm, ok := params[name].(map[string]any)
			if !ok {
				return Schema{}, &SchemaError{Function: s.Name, Field: "parameters." + name, Reason: "parameter must be an object"}
			}
			spec, err := parameterFromMap(s.Name, "parameters."+name, pm)
			if err != nil {
				return Schema{}, err
			}
			s.Parameters[name] = spec
		}
	}
	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			name, _ := r.(string)
			if !slices.Contains(s.Required, name) {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s, nil
}

// isJSONSchemaObject reports whether parameters is a JSON Schema object rather than a flat
// name -> spec map. A flat map never has a string "type" value.
func isJSONSchemaObject(params map[string]any) bool {
	t, ok := params["type"].(string)
	return ok && t == "object"
}

func parameterFromMap(function, path string, m map[string]any) (ParameterSpec, error) {
	typ, err := parameterType(m["type"])
	if err != nil {
		return ParameterSpec{}, &SchemaError{Function: function, Field: path + ".type", Reason: err.Error()}
	}
	spec := ParameterSpec{
		Type:        typ,
		Description: stringField(m, "description"),
		Pattern:     stringField(m, "pattern"),
	}
	if b, ok := m["required"].(bool); ok {
		spec.Required = b
	}
	enum, ok := m["enum"].([]any)
	if !ok {
		enum, _ = m["enum_values"].([]any)
	}
	for _, e := range enum {
		spec.Enum = append(spec.Enum, normalizeNumber(e))
	}
	if spec.Minimum, err = numberField(m, "minimum"); err != nil {
		return ParameterSpec{}, &SchemaError{Function: function, Field: path + ".minimum", Reason: err.Error()}
	}
	if spec.Maximum, err = numberField(m, "maximum"); err != nil {
		return ParameterSpec{}, &SchemaError{Function: function, Field: path + ".maximum", Reason: err.Error()}
	}
	if items, ok := m["items"].(map[string]any); ok {
		it, err := parameterFromMap(function, path+".items", items)
		if err != nil {
			return ParameterSpec{}, err
		}
		spec.Items = &it
	}
	if props, ok := m["properties"].(map[string]any); ok {
		spec.Properties = make(map[string]ParameterSpec, len(props))
		for _, name := range slices.Sorted(maps.Keys(props)) {
			pm, ok := props[name].(map[string]any)
			if !ok {
				return ParameterSpec{}, &SchemaError{Function: function, Field: path + ".properties." + name, Reason: "property must be an object"}
			}
			prop, err := parameterFromMap(function, path+".properties."+name, pm)
			if err != nil {
				return ParameterSpec{}, err
			}
			spec.Properties[name] = prop
		}
	}
	// JSON Schema style: required listed on the enclosing object.
	if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			name, _ := r.(string)
			prop, ok := spec.Properties[name]
			if !ok {
				return ParameterSpec{}, &SchemaError{
					Function: function,
					Field:    path + ".required",
					Reason:   fmt.Sprintf("required property %q is not declared in properties", name),
				}
			}
			prop.Required = true
			spec.Properties[name] = prop
		}
	}
	return spec, nil
}

// parameterType accepts "string" or a JSON Schema type list such as ["string", "null"].
func parameterType(v any) (ParameterType, error) {
	switch t := v.(type) {
	case string:
		return ParameterType(t), nil
	case []any:
		for _, el := range t {
			if s, ok := el.(string); ok && s != "null" {
				return ParameterType(s), nil
			}
		}
	case nil:
		return "", fmt.Errorf("parameter type is missing")
	}
	return "", fmt.Errorf("unsupported parameter type %v", v)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func numberField(m map[string]any, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// normalizeNumber turns json.Number into int64 or float64 so parsed enums compare with literals.
func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
