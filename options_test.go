package fncall

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerOptions(t *testing.T) {
	t.Parallel()
	var o callerOptions
	for _, opt := range []CallerOption{WithAllowUnknown(), WithRetries(-3)} {
		opt(&o)
	}
	assert.True(t, o.allowUnknown)
	assert.Equal(t, 0, o.retries)

	WithRetries(2)(&o)
	assert.Equal(t, 2, o.retries)
}

func TestRegistryOptions(t *testing.T) {
	t.Parallel()
	var o registryOptions
	WithReplaceExisting()(&o)
	assert.True(t, o.replaceExisting)
}

func TestLoggers(t *testing.T) {
	t.Parallel()
	var regBuf, callBuf bytes.Buffer
	reg := NewRegistry(WithRegistryLogger(slog.New(slog.NewTextHandler(&regBuf, nil))))
	require.NoError(t, reg.Register("add", addHandler, addSchema()))
	assert.Contains(t, regBuf.String(), "function registered")
	require.ErrorIs(t, reg.Register("add", addHandler, addSchema()), ErrDuplicateName)
	assert.Contains(t, regBuf.String(), "function registration failed")

	logger := slog.New(slog.NewTextHandler(&callBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	caller := NewCaller(reg, WithLogger(logger))
	_, err := caller.Call(context.Background(), "add", map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, callBuf.String(), "call rejected: invalid arguments")

	// Defaults discard without panicking.
	_, err = NewCaller(reg).Call(context.Background(), "add", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
}
