// Package fncallotel traces function calls with OpenTelemetry.
package fncallotel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skosovsky/fncall"
)

const instrumentationName = "github.com/skosovsky/fncall/ext/fncallotel"

// Attribute keys set on every call span.
const (
	AttrFunction  = attribute.Key("fncall.function")
	AttrArguments = attribute.Key("fncall.arguments")
)

type config struct {
	provider trace.TracerProvider
}

// Option configures the middleware.
type Option func(*config)

// WithTracerProvider sets the provider; the global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		if tp != nil {
			c.provider = tp
		}
	}
}

// Middleware returns a fncall.Middleware that wraps each handler run in a span
// named "fncall <function>". Handler errors are recorded on the span.
func Middleware(opts ...Option) fncall.Middleware {
	cfg := config{provider: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&cfg)
	}
	tracer := cfg.provider.Tracer(instrumentationName)

	return func(name string, next fncall.Handler) fncall.Handler {
		return func(ctx context.Context, args fncall.Arguments) (any, error) {
			ctx, span := tracer.Start(ctx, "fncall "+name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					AttrFunction.String(name),
					AttrArguments.Int(len(args)),
				),
			)
			defer span.End()

			res, err := next(ctx, args)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			span.SetStatus(codes.Ok, "")
			return res, nil
		}
	}
}
