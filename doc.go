// Package fncall registers functions that a language model may call, describes them,
// and executes model-produced calls safely.
//
// # Overview
//
// A model emits a function name and an argument mapping. This package turns that into
// a concrete Go call: look up the function → validate arguments against its Schema
// (required, then unknown, then types) → invoke the handler → return the value, or an
// error the model can read and correct itself from.
//
// Pipeline: Schema (Go literal, declaration JSON, or a reflected struct) + Handler →
// Registry.Register (schema checked and compiled once) → Caller.Call / Caller.Dispatch.
//
// # Key concepts
//
//   - Single schema: the Schema that validates arguments also renders the JSON Schema,
//     system prompt and documentation shown to the model.
//   - Rejected calls never reach the handler: a missing, unknown or mistyped argument
//     yields an *ArgumentError.
//   - Handler failures and panics become *ExecutionError; Dispatch folds every outcome
//     into a Result with a structured Fault.
//   - Policies are explicit options: WithReplaceExisting for duplicate names,
//     WithAllowUnknown for undeclared arguments, WithRetries for flaky handlers.
//
// # Example
//
//	reg := fncall.NewRegistry()
//	err := reg.Register("add", func(_ context.Context, a fncall.Arguments) (any, error) {
//	    return a.Int("a") + a.Int("b"), nil
//	}, fncall.Schema{
//	    Description: "Add two integers",
//	    Parameters: map[string]fncall.ParameterSpec{
//	        "a": {Type: fncall.TypeInteger},
//	        "b": {Type: fncall.TypeInteger},
//	    },
//	    Required: []string{"a", "b"},
//	})
//	if err != nil { ... }
//	caller := fncall.NewCaller(reg)
//	v, err := caller.Call(ctx, "add", map[string]any{"a": 2, "b": 3}) // v == int64(5)
package fncall
