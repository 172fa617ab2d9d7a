package fncall

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds functions keyed by name. Safe for concurrent use; a single mutex guards the map.
type Registry struct {
	mu        sync.Mutex
	functions map[string]*entry
	order     []string
	opts      registryOptions
}

type entry struct {
	fn   RegisteredFunction
	plan *argPlan
}

// NewRegistry creates an empty Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = loggerOrDiscard(o.logger)
	return &Registry{
		functions: make(map[string]*entry),
		opts:      o,
	}
}

// Register stores handler under name. schema.Name defaults to name and must match it otherwise.
// Returns *SchemaError (ErrSchemaInvalid) for a malformed schema or nil handler, and
// ErrDuplicateName if name is taken (unless WithReplaceExisting is set).
func (r *Registry) Register(name string, handler Handler, schema Schema) error {
	e, err := r.prepare(name, handler, schema)
	if err != nil {
		r.opts.logger.Error("function registration failed", "function", name, "error", err)
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[name]; exists {
		if !r.opts.replaceExisting {
			r.opts.logger.Error("function registration failed", "function", name, "error", ErrDuplicateName)
			return duplicateName(name)
		}
	} else {
		r.order = append(r.order, name)
	}
	r.functions[name] = e
	r.opts.logger.Info("function registered", "function", name)
	return nil
}

// RegisterDeclaration parses raw with ParseDeclaration and registers handler under the declared name.
func (r *Registry) RegisterDeclaration(handler Handler, raw []byte) error {
	s, err := ParseDeclaration(raw)
	if err != nil {
		return err
	}
	return r.Register(s.Name, handler, s)
}

// Update replaces an existing function's handler and schema wholesale. ErrNotFound if absent.
func (r *Registry) Update(name string, handler Handler, schema Schema) error {
	e, err := r.prepare(name, handler, schema)
	if err != nil {
		r.opts.logger.Error("function update failed", "function", name, "error", err)
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[name]; !exists {
		return notFound(name)
	}
	r.functions[name] = e
	r.opts.logger.Info("function updated", "function", name)
	return nil
}

// Unregister removes a function. ErrNotFound if absent.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.functions[name]; !exists {
		return notFound(name)
	}
	delete(r.functions, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	r.opts.logger.Info("function unregistered", "function", name)
	return nil
}

// Get returns a copy of the registered function or ErrNotFound.
func (r *Registry) Get(name string) (RegisteredFunction, error) {
	e, ok := r.lookup(name)
	if !ok {
		return RegisteredFunction{}, notFound(name)
	}
	fn := e.fn
	fn.Schema = fn.Schema.Clone()
	return fn, nil
}

// SchemaOf returns a copy of the function's schema or ErrNotFound.
func (r *Registry) SchemaOf(name string) (Schema, error) {
	e, ok := r.lookup(name)
	if !ok {
		return Schema{}, notFound(name)
	}
	return e.fn.Schema.Clone(), nil
}

// List returns registered names in registration order. A replaced function keeps its slot.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Describe returns name/description pairs in registration order.
func (r *Registry) Describe() []FunctionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FunctionInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, FunctionInfo{Name: name, Description: r.functions[name].fn.Schema.Description})
	}
	return out
}

// Schemas returns copies of all schemas in registration order (e.g. for exporting to model providers).
func (r *Registry) Schemas() []Schema {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.functions[name].fn.Schema.Clone())
	}
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.functions)
}

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.functions[name]
	return e, ok
}

// prepare validates and compiles a registration outside the lock.
func (r *Registry) prepare(name string, handler Handler, schema Schema) (*entry, error) {
	if name == "" {
		return nil, &SchemaError{Field: "name", Reason: "function name must not be empty"}
	}
	if handler == nil {
		return nil, &SchemaError{Function: name, Field: "handler", Reason: "handler must not be nil"}
	}
	s := schema.Clone()
	if s.Name == "" {
		s.Name = name
	}
	if s.Name != name {
		return nil, &SchemaError{Function: name, Field: "name", Reason: fmt.Sprintf("schema name %q does not match registration name", s.Name)}
	}
	plan, err := compileSchema(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveJSONSchema(); err != nil {
		return nil, &SchemaError{Function: name, Reason: "exported JSON schema does not resolve: " + err.Error()}
	}
	return &entry{
		fn:   RegisteredFunction{Name: name, Schema: s, Handler: handler},
		plan: plan,
	}, nil
}
