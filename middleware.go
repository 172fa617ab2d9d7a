package fncall

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps the handler of the named function with cross-cutting behavior
// (logging, recovery, timeout). It runs after argument validation.
type Middleware func(name string, next Handler) Handler

// WithLogging returns a middleware that logs start, end, duration, and errors.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, args Arguments) (any, error) {
			logger.InfoContext(ctx, "function start", "function", name)
			start := time.Now()
			res, err := next(ctx, args)
			dur := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "function error", "function", name, "duration", dur, "error", err)
				return nil, err
			}
			logger.InfoContext(ctx, "function end", "function", name, "duration", dur)
			return res, nil
		}
	}
}

// WithRecovery returns a middleware that turns a panic into an ExecutionError.
// Caller recovers panics regardless; this is for handlers used outside a Caller
// or for ordering recovery inside other middlewares.
func WithRecovery() Middleware {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, args Arguments) (res any, err error) {
			defer func() {
				if p := recover(); p != nil {
					res = nil
					err = &ExecutionError{Function: name, Err: &panicError{p: p}}
				}
			}()
			return next(ctx, args)
		}
	}
}

// WithTimeout returns a middleware that gives the handler a context with deadline d.
// Handlers must honor ctx for the deadline to have effect.
func WithTimeout(d time.Duration) Middleware {
	return func(_ string, next Handler) Handler {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, args Arguments) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, args)
		}
	}
}

// chain applies middlewares in onion order: the first middleware is outermost.
func chain(name string, h Handler, middlewares []Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](name, h)
	}
	return h
}
