package fncall

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for fncall. Use errors.Is to check.
var (
	ErrNotFound         = errors.New("function not found")
	ErrSchemaInvalid    = errors.New("invalid function schema")
	ErrDuplicateName    = errors.New("function already registered")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrTypeValidation   = errors.New("parameter type mismatch")
	ErrConstraint       = errors.New("parameter constraint violated")
	ErrExecution        = errors.New("function execution failed")
)

// FaultKind is the machine-readable error kind carried by Fault.
type FaultKind string

const (
	FaultNotFound         FaultKind = "not_found"
	FaultValidation       FaultKind = "validation"
	FaultDuplicateName    FaultKind = "duplicate_name"
	FaultMissingParameter FaultKind = "missing_parameter"
	FaultUnknownParameter FaultKind = "unknown_parameter"
	FaultTypeValidation   FaultKind = "type_validation"
	FaultConstraint       FaultKind = "constraint"
	FaultExecution        FaultKind = "execution"
	FaultInternal         FaultKind = "internal"
)

// SchemaError reports a malformed schema at registration or declaration parsing time.
// Field is the offending path inside the schema ("parameters.a.type", "required"), if any.
type SchemaError struct {
	Function string
	Field    string
	Reason   string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("invalid schema")
	if e.Function != "" {
		fmt.Fprintf(&b, " for %q", e.Function)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " at %s", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Unwrap makes errors.Is(err, ErrSchemaInvalid) hold for every SchemaError.
func (e *SchemaError) Unwrap() error { return ErrSchemaInvalid }

// ArgumentError is returned when call arguments do not satisfy the function schema.
// Its message is meant to be sent back to the model for self-correction.
// Err is one of ErrMissingParameter, ErrUnknownParameter, ErrTypeValidation or ErrConstraint.
type ArgumentError struct {
	Function string
	// Param is the path of the first offending parameter ("a", "filter.city", "ids[2]").
	Param string
	// Names lists every offending parameter for missing/unknown errors.
	Names    []string
	Expected string
	Actual   string
	Reason   string
	Err      error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %q: %s", e.Function, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ExecutionError wraps an error returned (or a panic raised) by a registered handler.
// Unlike internal failures the original message is kept: the model may act on it.
type ExecutionError struct {
	Function string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("function %q failed: %v", e.Function, e.Err)
}

// Unwrap exposes both ErrExecution and the handler's own error to errors.Is/errors.As.
func (e *ExecutionError) Unwrap() []error { return []error{ErrExecution, e.Err} }

// IsArgumentError returns true if err is or wraps an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// IsExecutionError returns true if err is or wraps an ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// Fault is the structured error object returned to the collaborator that talks to the model.
type Fault struct {
	Kind    FaultKind `json:"kind"`
	Message string    `json:"message"`
	Param   string    `json:"parameter,omitempty"`
}

func (f *Fault) Error() string { return string(f.Kind) + ": " + f.Message }

// FaultOf maps any error produced by this package to a Fault. It returns nil for a nil error.
// Unknown errors map to FaultInternal with a generic message.
func FaultOf(err error) *Fault {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		// Only the function's own typed arguments keep an argument fault kind.
		var ae *ArgumentError
		if errors.As(ee.Err, &ae) && ae.Function == ee.Function {
			return &Fault{Kind: argumentFaultKind(ae.Err), Message: ae.Error(), Param: ae.Param}
		}
		return &Fault{Kind: FaultExecution, Message: ee.Error()}
	}
	var ae *ArgumentError
	if errors.As(err, &ae) {
		return &Fault{Kind: argumentFaultKind(ae.Err), Message: ae.Error(), Param: ae.Param}
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return &Fault{Kind: FaultValidation, Message: se.Error(), Param: se.Field}
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return &Fault{Kind: FaultNotFound, Message: err.Error()}
	case errors.Is(err, ErrDuplicateName):
		return &Fault{Kind: FaultDuplicateName, Message: err.Error()}
	}
	return &Fault{Kind: FaultInternal, Message: "internal error during function call"}
}

func argumentFaultKind(sentinel error) FaultKind {
	switch {
	case errors.Is(sentinel, ErrMissingParameter):
		return FaultMissingParameter
	case errors.Is(sentinel, ErrUnknownParameter):
		return FaultUnknownParameter
	case errors.Is(sentinel, ErrConstraint):
		return FaultConstraint
	default:
		return FaultTypeValidation
	}
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

func duplicateName(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateName, name)
}

// decodeError reports arguments that are not a JSON object.
func decodeError(function string, err error) error {
	return &ArgumentError{Function: function, Expected: "object", Reason: err.Error(), Err: ErrTypeValidation}
}

// panicError wraps a recovered panic value; used by Caller and WithRecovery middleware.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
