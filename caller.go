package fncall

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Caller validates argument mappings against registered schemas and invokes the handlers.
// Every call re-validates and re-invokes; nothing is cached.
type Caller struct {
	registry *Registry
	opts     callerOptions

	mu          sync.Mutex
	middlewares []Middleware
}

// NewCaller creates a Caller over reg. A nil reg gets a fresh empty Registry.
func NewCaller(reg *Registry, opts ...CallerOption) *Caller {
	if reg == nil {
		reg = NewRegistry()
	}
	var o callerOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = loggerOrDiscard(o.logger)
	return &Caller{registry: reg, opts: o}
}

// Registry returns the underlying registry.
func (c *Caller) Registry() *Registry { return c.registry }

// Use replaces the middleware chain applied to every handler invocation (onion order:
// first middleware is outermost).
func (c *Caller) Use(middlewares ...Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = slices.Clone(middlewares)
}

// Call validates arguments against the named function's schema and invokes it.
//
// Failures: ErrNotFound for an unknown name; *ArgumentError wrapping ErrMissingParameter,
// ErrUnknownParameter, ErrTypeValidation or ErrConstraint when arguments are rejected (the handler
// is not invoked); *ExecutionError when the handler returns an error or panics.
// On success the handler's return value is returned unchanged.
func (c *Caller) Call(ctx context.Context, name string, arguments map[string]any) (any, error) {
	return c.call(ctx, Call{Name: name, Arguments: arguments})
}

// CallJSON decodes a JSON object of arguments and calls the named function.
// Malformed JSON is reported as an ArgumentError wrapping ErrTypeValidation.
func (c *Caller) CallJSON(ctx context.Context, name string, raw []byte) (any, error) {
	args, err := DecodeArguments(raw)
	if err != nil {
		return nil, decodeError(name, err)
	}
	return c.Call(ctx, name, args)
}

// Dispatch runs call and folds the outcome into a Result; it never returns a Go error.
// A missing call ID is filled with a random UUID.
func (c *Caller) Dispatch(ctx context.Context, call Call) Result {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	value, err := c.call(ctx, call)
	return Result{CallID: call.ID, Name: call.Name, Value: value, Fault: FaultOf(err)}
}

// DispatchJSON is Dispatch for arguments still encoded as a JSON object, as most
// model APIs deliver them. Malformed JSON yields a type_validation fault.
func (c *Caller) DispatchJSON(ctx context.Context, id, name string, raw []byte) Result {
	args, err := DecodeArguments(raw)
	if err != nil {
		if id == "" {
			id = uuid.NewString()
		}
		return Result{CallID: id, Name: name, Fault: FaultOf(decodeError(name, err))}
	}
	return c.Dispatch(ctx, Call{ID: id, Name: name, Arguments: args})
}

// DispatchBatch dispatches calls sequentially in order. One failure does not stop the others.
func (c *Caller) DispatchBatch(ctx context.Context, calls []Call) []Result {
	out := make([]Result, len(calls))
	for i, call := range calls {
		out[i] = c.Dispatch(ctx, call)
	}
	return out
}

func (c *Caller) call(ctx context.Context, call Call) (value any, err error) {
	start := time.Now()
	if c.opts.onAfter != nil {
		defer func() {
			res := Result{CallID: call.ID, Name: call.Name, Value: value, Fault: FaultOf(err)}
			c.opts.onAfter(ctx, call, res, time.Since(start))
		}()
	}
	logger := c.opts.logger.With("function", call.Name)

	e, ok := c.registry.lookup(call.Name)
	if !ok {
		logger.DebugContext(ctx, "call rejected: function not found")
		return nil, notFound(call.Name)
	}
	args, err := e.plan.validate(call.Arguments, c.opts.allowUnknown)
	if err != nil {
		logger.DebugContext(ctx, "call rejected: invalid arguments", "error", err)
		return nil, err
	}

	c.mu.Lock()
	h := chain(call.Name, e.fn.Handler, c.middlewares)
	c.mu.Unlock()

	if c.opts.onBefore != nil {
		c.opts.onBefore(ctx, call)
	}
	for attempt := 0; ; attempt++ {
		value, err = invoke(ctx, h, args)
		if err == nil {
			logger.DebugContext(ctx, "function called", "attempts", attempt+1)
			return value, nil
		}
		if attempt >= c.opts.retries || ctx.Err() != nil || IsArgumentError(err) {
			break
		}
		logger.WarnContext(ctx, "function attempt failed", "attempt", attempt+1, "error", err)
	}
	logger.ErrorContext(ctx, "function execution failed", "retries", c.opts.retries, "error", err)
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return nil, err
	}
	return nil, &ExecutionError{Function: call.Name, Err: err}
}

// invoke runs h, converting a panic into an error so nothing escapes the Caller.
func invoke(ctx context.Context, h Handler, args Arguments) (res any, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = &panicError{p: p}
		}
	}()
	return h(ctx, args)
}

// Documentation renders a human-readable description of the named function. ErrNotFound if absent.
func (c *Caller) Documentation(name string) (string, error) {
	s, err := c.registry.SchemaOf(name)
	if err != nil {
		return "", err
	}
	return RenderDocumentation(s), nil
}

// SystemPrompt lists the currently registered functions for a model system prompt.
// It is rebuilt from the registry on every call, so it always reflects registrations.
func (c *Caller) SystemPrompt() string {
	return RenderSystemPrompt(c.registry.Describe())
}
