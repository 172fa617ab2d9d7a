package testutil

import (
	"log/slog"
	"testing"

	"github.com/skosovsky/fncall"
)

// NewTestRegistry returns a Registry holding fns. It fails the test if any registration fails.
func NewTestRegistry(t testing.TB, fns ...*MockFunction) *fncall.Registry {
	t.Helper()
	reg := fncall.NewRegistry(fncall.WithRegistryLogger(slog.New(slog.DiscardHandler)))
	for _, fn := range fns {
		if err := reg.Register(fn.Name(), fn.Handle, fn.Schema()); err != nil {
			t.Fatalf("register %q: %v", fn.Name(), err)
		}
	}
	return reg
}

// NewTestCaller returns a Caller over a fresh registry holding fns, suitable for tests.
func NewTestCaller(t testing.TB, fns []*MockFunction, opts ...fncall.CallerOption) *fncall.Caller {
	t.Helper()
	return fncall.NewCaller(NewTestRegistry(t, fns...), opts...)
}
