package openai

import (
	"context"
	"encoding/json"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/fncall"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newCaller(t *testing.T) *fncall.Caller {
	t.Helper()
	reg := fncall.NewRegistry()
	require.NoError(t, reg.Register("add", func(_ context.Context, a fncall.Arguments) (any, error) {
		return a.Int("a") + a.Int("b"), nil
	}, fncall.Schema{
		Description: "Add two integers",
		Parameters: map[string]fncall.ParameterSpec{
			"a": {Type: fncall.TypeInteger},
			"b": {Type: fncall.TypeInteger},
			"c": {Type: fncall.TypeString},
		},
		Required: []string{"a", "b"},
	}))
	return fncall.NewCaller(reg)
}

func TestTools(t *testing.T) {
	caller := newCaller(t)
	tools := Tools(caller.Registry())
	require.Len(t, tools, 1)
	assert.Equal(t, goopenai.ToolTypeFunction, tools[0].Type)
	require.NotNil(t, tools[0].Function)
	assert.Equal(t, "add", tools[0].Function.Name)
	assert.Equal(t, "Add two integers", tools[0].Function.Description)
	assert.False(t, tools[0].Function.Strict)

	data, err := json.Marshal(tools[0].Function.Parameters)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {"a": {"type": "integer"}, "b": {"type": "integer"}, "c": {"type": "string"}},
		"required": ["a", "b"]
	}`, string(data))

	assert.Nil(t, Tools(fncall.NewRegistry()))
}

func TestTools_Strict(t *testing.T) {
	caller := newCaller(t)
	tools := Tools(caller.Registry(), WithStrict())
	require.Len(t, tools, 1)
	assert.True(t, tools[0].Function.Strict)
	params, ok := tools[0].Function.Parameters.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, params["additionalProperties"])
	assert.Equal(t, []any{"a", "b", "c"}, params["required"])
}

func TestHandle(t *testing.T) {
	caller := newCaller(t)
	msgs := Handle(context.Background(), caller, []goopenai.ToolCall{
		{ID: "call_1", Type: goopenai.ToolTypeFunction, Function: goopenai.FunctionCall{Name: "add", Arguments: `{"a":2,"b":3}`}},
		{ID: "call_2", Type: goopenai.ToolTypeFunction, Function: goopenai.FunctionCall{Name: "add", Arguments: `{"a":2}`}},
		{ID: "call_3", Type: goopenai.ToolTypeFunction, Function: goopenai.FunctionCall{Name: "add", Arguments: `{"a":`}},
	})
	require.Len(t, msgs, 3)
	for i, id := range []string{"call_1", "call_2", "call_3"} {
		assert.Equal(t, goopenai.ChatMessageRoleTool, msgs[i].Role)
		assert.Equal(t, id, msgs[i].ToolCallID)
	}
	assert.Equal(t, "5", msgs[0].Content)

	var fault struct {
		Error fncall.Fault `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Content), &fault))
	assert.Equal(t, fncall.FaultMissingParameter, fault.Error.Kind)
	assert.Equal(t, "b", fault.Error.Param)

	require.NoError(t, json.Unmarshal([]byte(msgs[2].Content), &fault))
	assert.Equal(t, fncall.FaultTypeValidation, fault.Error.Kind)
}
