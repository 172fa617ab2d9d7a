// Package testutil provides test helpers for fncall (e.g. MockFunction).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/fncall"
)

// MockFunction is a configurable function for tests. It records every invocation.
type MockFunction struct {
	NameVal   string
	DescVal   string
	ParamsVal map[string]fncall.ParameterSpec
	// RequiredVal lists required parameter names.
	RequiredVal []string
	CallFn      func(ctx context.Context, args fncall.Arguments) (any, error)

	mu    sync.Mutex
	calls []fncall.Arguments
}

// Name returns the function name.
func (m *MockFunction) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Schema returns the schema the mock registers with.
func (m *MockFunction) Schema() fncall.Schema {
	return fncall.Schema{
		Name:        m.Name(),
		Description: m.DescVal,
		Parameters:  m.ParamsVal,
		Required:    m.RequiredVal,
	}
}

// Handle records args and runs CallFn if set, otherwise returns nil.
func (m *MockFunction) Handle(ctx context.Context, args fncall.Arguments) (any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.mu.Unlock()
	if m.CallFn != nil {
		return m.CallFn(ctx, args)
	}
	return nil, nil
}

// Calls returns the arguments of every invocation so far, in order.
func (m *MockFunction) Calls() []fncall.Arguments {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]fncall.Arguments, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of invocations.
func (m *MockFunction) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Registered returns the mock as a RegisteredFunction.
func (m *MockFunction) Registered() fncall.RegisteredFunction {
	return fncall.RegisteredFunction{Name: m.Name(), Schema: m.Schema(), Handler: m.Handle}
}
