// Package gemini bridges a fncall registry to the Gemini function calling format.
package gemini

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"google.golang.org/genai"

	"github.com/skosovsky/fncall"
)

// Tools converts the registry into a single Gemini tool holding one declaration per function.
// Returns nil for an empty registry.
func Tools(reg *fncall.Registry) []*genai.Tool {
	schemas := reg.Schemas()
	if len(schemas) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(schemas))
	for _, s := range schemas {
		decls = append(decls, Declaration(s))
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// Declaration converts one schema into a Gemini function declaration.
func Declaration(s fncall.Schema) *genai.FunctionDeclaration {
	params := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(s.Parameters)),
		Required:   s.RequiredNames(),
	}
	for name, p := range s.Parameters {
		params.Properties[name] = convertParameter(p)
	}
	return &genai.FunctionDeclaration{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  params,
	}
}

func convertParameter(p fncall.ParameterSpec) *genai.Schema {
	schema := &genai.Schema{
		Type:        mapSchemaType(p.Type),
		Description: p.Description,
		Minimum:     p.Minimum,
		Maximum:     p.Maximum,
		Pattern:     p.Pattern,
	}
	// Gemini enums are string-only.
	for _, e := range p.Enum {
		schema.Enum = append(schema.Enum, fmt.Sprint(e))
	}
	if p.Type == fncall.TypeEnum {
		schema.Format = "enum"
	}
	if p.Items != nil {
		schema.Items = convertParameter(*p.Items)
	}
	if len(p.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(p.Properties))
		for _, name := range slices.Sorted(maps.Keys(p.Properties)) {
			prop := p.Properties[name]
			schema.Properties[name] = convertParameter(prop)
			if prop.Required {
				schema.Required = append(schema.Required, name)
			}
		}
	}
	return schema
}

func mapSchemaType(t fncall.ParameterType) genai.Type {
	switch t {
	case fncall.TypeString, fncall.TypeEnum:
		return genai.TypeString
	case fncall.TypeNumber:
		return genai.TypeNumber
	case fncall.TypeInteger:
		return genai.TypeInteger
	case fncall.TypeBoolean:
		return genai.TypeBoolean
	case fncall.TypeArray:
		return genai.TypeArray
	case fncall.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

// Handle dispatches every function call part of a model turn and returns one
// function response part per call, in order.
func Handle(ctx context.Context, caller *fncall.Caller, parts []*genai.Part) []*genai.Part {
	var out []*genai.Part
	for _, part := range parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		fc := part.FunctionCall
		res := caller.Dispatch(ctx, fncall.Call{ID: fc.ID, Name: fc.Name, Arguments: fc.Args})
		out = append(out, ResponsePart(res))
	}
	return out
}

// ResponsePart renders a result as a function response part: {"output": value} on success,
// {"error": fault} otherwise.
func ResponsePart(res fncall.Result) *genai.Part {
	response := map[string]any{"output": res.Value}
	if res.Fault != nil {
		response = map[string]any{"error": res.Fault}
	}
	return &genai.Part{
		FunctionResponse: &genai.FunctionResponse{
			ID:       res.CallID,
			Name:     res.Name,
			Response: response,
		},
	}
}
