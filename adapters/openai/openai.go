// Package openai bridges a fncall registry to the OpenAI chat completions tool format.
package openai

import (
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/skosovsky/fncall"
)

// Option configures tool conversion.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrict exports strict schemas (additionalProperties: false, every property required)
// and marks the tools for Structured Outputs.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Tools converts every registered function into an OpenAI function tool, in registration order.
func Tools(reg *fncall.Registry, opts ...Option) []goopenai.Tool {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	schemas := reg.Schemas()
	if len(schemas) == 0 {
		return nil
	}
	result := make([]goopenai.Tool, len(schemas))
	for i, s := range schemas {
		params := s.JSONSchema()
		if o.strict {
			params = s.StrictJSONSchema()
		}
		result[i] = goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  params,
				Strict:      o.strict,
			},
		}
	}
	return result
}

// Handle dispatches every function tool call of an assistant message and returns one
// tool-role message per call, in order. Failures become error payloads the model can read.
func Handle(ctx context.Context, caller *fncall.Caller, toolCalls []goopenai.ToolCall) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(toolCalls))
	for _, tc := range toolCalls {
		if tc.Type != "" && tc.Type != goopenai.ToolTypeFunction {
			continue
		}
		res := caller.DispatchJSON(ctx, tc.ID, tc.Function.Name, []byte(tc.Function.Arguments))
		out = append(out, Message(res))
	}
	return out
}

// Message renders a result as a tool-role chat message answering its call.
func Message(res fncall.Result) goopenai.ChatCompletionMessage {
	return goopenai.ChatCompletionMessage{
		Role:       goopenai.ChatMessageRoleTool,
		Content:    res.Content(),
		ToolCallID: res.CallID,
	}
}
