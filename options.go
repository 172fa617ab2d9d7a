package fncall

import (
	"context"
	"log/slog"
	"time"
)

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	replaceExisting bool
	logger          *slog.Logger
}

// WithReplaceExisting makes Register replace an already registered function of the same name
// (last registration wins). By default Register rejects duplicates with ErrDuplicateName.
func WithReplaceExisting() RegistryOption {
	return func(o *registryOptions) {
		o.replaceExisting = true
	}
}

// WithRegistryLogger sets the logger for registration events. Default discards.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// CallerOption configures a Caller.
type CallerOption func(*callerOptions)

type callerOptions struct {
	allowUnknown bool
	retries      int
	logger       *slog.Logger
	onBefore     func(context.Context, Call)
	onAfter      func(context.Context, Call, Result, time.Duration)
}

// WithAllowUnknown passes undeclared arguments through to the handler instead of
// rejecting the call with ErrUnknownParameter.
func WithAllowUnknown() CallerOption {
	return func(o *callerOptions) {
		o.allowUnknown = true
	}
}

// WithRetries re-invokes a failing handler up to n extra times. Argument validation
// failures are never retried. Default 0.
func WithRetries(n int) CallerOption {
	return func(o *callerOptions) {
		o.retries = max(n, 0)
	}
}

// WithLogger sets the caller's logger. Default discards.
func WithLogger(logger *slog.Logger) CallerOption {
	return func(o *callerOptions) {
		o.logger = logger
	}
}

// WithOnBeforeCall sets a hook called after validation, right before the handler runs.
func WithOnBeforeCall(fn func(context.Context, Call)) CallerOption {
	return func(o *callerOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterCall sets a hook called when a call finishes, including rejected ones.
func WithOnAfterCall(fn func(context.Context, Call, Result, time.Duration)) CallerOption {
	return func(o *callerOptions) {
		o.onAfter = fn
	}
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
