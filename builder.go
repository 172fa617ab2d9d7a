package fncall

import "context"

// RegisterTyped registers a typed function. The schema is reflected from T (see NewExtractor);
// validated arguments are decoded into T before fn runs. The return value is passed through unchanged.
// This is a function and not a method because methods cannot have type parameters.
func RegisterTyped[T, R any](
	reg *Registry,
	name, description string,
	fn func(ctx context.Context, args T) (R, error),
) error {
	h, schema, err := NewTypedHandler(name, description, fn)
	if err != nil {
		return err
	}
	return reg.Register(name, h, schema)
}

// NewTypedHandler adapts fn to a Handler and returns the reflected Schema for it.
func NewTypedHandler[T, R any](
	name, description string,
	fn func(ctx context.Context, args T) (R, error),
) (Handler, Schema, error) {
	if fn == nil {
		return nil, Schema{}, &SchemaError{Function: name, Field: "handler", Reason: "handler must not be nil"}
	}
	ext, err := NewExtractor[T](name, description)
	if err != nil {
		return nil, Schema{}, err
	}
	h := func(ctx context.Context, args Arguments) (any, error) {
		in, err := ext.Extract(args)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}
	return h, ext.Schema(), nil
}
