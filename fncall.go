package fncall

import (
	"context"
	"encoding/json"
)

// Handler is the fixed signature every registered function is adapted to.
// args are already validated against the function's Schema.
type Handler func(ctx context.Context, args Arguments) (any, error)

// RegisteredFunction pairs a handler with its schema. Identity is Name.
// Values returned by Registry are copies; mutating them does not affect the registry.
type RegisteredFunction struct {
	Name    string
	Schema  Schema
	Handler Handler
}

// FunctionInfo is a name/description pair used for listings and system prompts.
type FunctionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Call is a single invocation request (as produced by the model).
type Call struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Result is the outcome of Caller.Dispatch: either Value or Fault is set.
type Result struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
	Value  any    `json:"value,omitempty"`
	Fault  *Fault `json:"error,omitempty"`
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Fault == nil }

// Err returns the fault as an error, or nil.
func (r Result) Err() error {
	if r.Fault == nil {
		return nil
	}
	return r.Fault
}

// Content renders the result as text for a tool-result message: strings are returned as-is,
// other values as JSON, faults as {"error": {...}}.
func (r Result) Content() string {
	if r.Fault != nil {
		b, err := json.Marshal(map[string]any{"error": r.Fault})
		if err != nil {
			return r.Fault.Error()
		}
		return string(b)
	}
	switch v := r.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}
	b, err := json.Marshal(r.Value)
	if err != nil {
		return (&Fault{Kind: FaultInternal, Message: "result is not JSON-encodable: " + err.Error()}).Error()
	}
	return string(b)
}
