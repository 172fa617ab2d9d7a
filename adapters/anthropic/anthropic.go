// Package anthropic bridges a fncall registry to the Anthropic Messages tool format.
package anthropic

import (
	"context"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/skosovsky/fncall"
)

// Tools converts every registered function into an Anthropic tool, in registration order.
func Tools(reg *fncall.Registry) []anthropicsdk.ToolUnionParam {
	schemas := reg.Schemas()
	if len(schemas) == 0 {
		return nil
	}
	result := make([]anthropicsdk.ToolUnionParam, len(schemas))
	for i, s := range schemas {
		params := s.JSONSchema()
		inputSchema := anthropicsdk.ToolInputSchemaParam{
			Type:       "object",
			Properties: params["properties"],
			Required:   s.RequiredNames(),
		}
		toolParam := anthropicsdk.ToolParam{
			Name:        s.Name,
			Description: anthropicsdk.String(s.Description),
			InputSchema: inputSchema,
		}
		result[i] = anthropicsdk.ToolUnionParam{
			OfTool: &toolParam,
		}
	}
	return result
}

// Handle dispatches every tool_use block of an assistant message and returns one
// tool_result block per call, in order. Other block types are skipped.
func Handle(ctx context.Context, caller *fncall.Caller, content []anthropicsdk.ContentBlockUnion) []anthropicsdk.ContentBlockParamUnion {
	var out []anthropicsdk.ContentBlockParamUnion
	for _, block := range content {
		if block.Type != "tool_use" {
			continue
		}
		res := caller.DispatchJSON(ctx, block.ID, block.Name, block.Input)
		out = append(out, ResultBlock(res))
	}
	return out
}

// ResultBlock renders a result as a tool_result block; faults set is_error.
func ResultBlock(res fncall.Result) anthropicsdk.ContentBlockParamUnion {
	return anthropicsdk.NewToolResultBlock(res.CallID, res.Content(), !res.OK())
}
