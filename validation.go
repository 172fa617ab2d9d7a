package fncall

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// argPlan is a schema compiled once at registration; validation never re-parses the Schema.
type argPlan struct {
	function string
	params   map[string]*paramRule
	required []string
}

// paramRule is the compiled form of a ParameterSpec.
type paramRule struct {
	typ      ParameterType
	enum     []Value
	items    *paramRule
	props    map[string]*paramRule
	required []string
	minimum  *float64
	maximum  *float64
	pattern  *regexp.Regexp
}

// compileSchema checks s and compiles it into an argPlan.
func compileSchema(s Schema) (*argPlan, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}
	plan := &argPlan{
		function: s.Name,
		params:   make(map[string]*paramRule, len(s.Parameters)),
		required: s.RequiredNames(),
	}
	for name, p := range s.Parameters {
		plan.params[name] = compileParam(p)
	}
	return plan, nil
}

// compileParam assumes p already passed check.
func compileParam(p ParameterSpec) *paramRule {
	r := &paramRule{typ: p.Type, minimum: p.Minimum, maximum: p.Maximum}
	for _, e := range p.Enum {
		v, _ := ValueOf(e)
		r.enum = append(r.enum, v)
	}
	if p.Pattern != "" {
		r.pattern = regexp.MustCompile(p.Pattern)
	}
	if p.Items != nil {
		r.items = compileParam(*p.Items)
	}
	if len(p.Properties) > 0 {
		r.props = make(map[string]*paramRule, len(p.Properties))
		for _, name := range slices.Sorted(maps.Keys(p.Properties)) {
			prop := p.Properties[name]
			r.props[name] = compileParam(prop)
			if prop.Required {
				r.required = append(r.required, name)
			}
		}
	}
	return r
}

// validate checks raw arguments in a fixed order: required, unknown, then types.
// On success it returns Arguments with declared values coerced to their declared type.
// Unknown arguments are kept as-is when allowUnknown is set.
func (p *argPlan) validate(raw map[string]any, allowUnknown bool) (Arguments, error) {
	var missing []string
	for _, name := range p.required {
		if v, ok := raw[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, p.missingError(missing)
	}

	var unknown []string
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if _, ok := p.params[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 && !allowUnknown {
		return nil, &ArgumentError{
			Function: p.function,
			Param:    unknown[0],
			Names:    unknown,
			Reason:   "unknown parameter(s): " + strings.Join(unknown, ", "),
			Err:      ErrUnknownParameter,
		}
	}

	args := make(Arguments, len(raw))
	for _, name := range slices.Sorted(maps.Keys(p.params)) {
		rv, ok := raw[name]
		if !ok || rv == nil {
			continue
		}
		v, err := ValueOf(rv)
		if err != nil {
			return nil, &ArgumentError{
				Function: p.function,
				Param:    name,
				Expected: string(p.params[name].typ),
				Actual:   fmt.Sprintf("%T", rv),
				Reason:   fmt.Sprintf("parameter %q: %v", name, err),
				Err:      ErrTypeValidation,
			}
		}
		coerced, err := p.check(p.params[name], name, v)
		if err != nil {
			return nil, err
		}
		args[name] = coerced
	}
	for _, name := range unknown {
		v, err := ValueOf(raw[name])
		if err != nil {
			return nil, &ArgumentError{
				Function: p.function,
				Param:    name,
				Actual:   fmt.Sprintf("%T", raw[name]),
				Reason:   fmt.Sprintf("parameter %q: %v", name, err),
				Err:      ErrTypeValidation,
			}
		}
		args[name] = v
	}
	return args, nil
}

// check validates v against r at path and returns the coerced value.
func (p *argPlan) check(r *paramRule, path string, v Value) (Value, error) {
	switch r.typ {
	case TypeString:
		if v.Kind() != KindString {
			return v, p.typeError(path, r.typ, v)
		}
	case TypeInteger:
		i, ok := v.AsInt()
		if !ok {
			return v, p.typeError(path, r.typ, v)
		}
		v = Int(i)
	case TypeNumber:
		if _, ok := v.AsFloat(); !ok {
			return v, p.typeError(path, r.typ, v)
		}
	case TypeBoolean:
		if v.Kind() != KindBoolean {
			return v, p.typeError(path, r.typ, v)
		}
	case TypeArray:
		arr, ok := v.AsArray()
		if !ok {
			return v, p.typeError(path, r.typ, v)
		}
		if r.items != nil {
			out := make([]Value, len(arr))
			for i, el := range arr {
				c, err := p.check(r.items, fmt.Sprintf("%s[%d]", path, i), el)
				if err != nil {
					return v, err
				}
				out[i] = c
			}
			v = Array(out...)
		}
	case TypeObject:
		obj, ok := v.AsObject()
		if !ok {
			return v, p.typeError(path, r.typ, v)
		}
		if r.props != nil {
			var missing []string
			for _, name := range r.required {
				if el, ok := obj[name]; !ok || el.IsNull() {
					missing = append(missing, path+"."+name)
				}
			}
			if len(missing) > 0 {
				return v, p.missingError(missing)
			}
			out := maps.Clone(obj)
			for _, name := range slices.Sorted(maps.Keys(r.props)) {
				el, ok := obj[name]
				if !ok || el.IsNull() {
					continue
				}
				c, err := p.check(r.props[name], path+"."+name, el)
				if err != nil {
					return v, err
				}
				out[name] = c
			}
			v = Object(out)
		}
	}
	if len(r.enum) > 0 && !slices.ContainsFunc(r.enum, v.Equal) {
		return v, &ArgumentError{
			Function: p.function,
			Param:    path,
			Expected: "one of " + formatEnum(r.enum),
			Actual:   v.String(),
			Reason:   fmt.Sprintf("parameter %q: value %s is not one of %s", path, v.String(), formatEnum(r.enum)),
			Err:      ErrTypeValidation,
		}
	}
	return v, p.checkConstraints(r, path, v)
}

func (p *argPlan) checkConstraints(r *paramRule, path string, v Value) error {
	if f, ok := v.AsFloat(); ok {
		if r.minimum != nil && f < *r.minimum {
			return p.constraintError(path, fmt.Sprintf("value %v is less than minimum %v", f, *r.minimum))
		}
		if r.maximum != nil && f > *r.maximum {
			return p.constraintError(path, fmt.Sprintf("value %v is greater than maximum %v", f, *r.maximum))
		}
	}
	if s, ok := v.AsString(); ok && r.pattern != nil && !r.pattern.MatchString(s) {
		return p.constraintError(path, fmt.Sprintf("value %q does not match pattern %s", s, r.pattern.String()))
	}
	return nil
}

func (p *argPlan) typeError(path string, want ParameterType, got Value) error {
	return &ArgumentError{
		Function: p.function,
		Param:    path,
		Expected: string(want),
		Actual:   got.Kind().String(),
		Reason:   fmt.Sprintf("parameter %q: expected %s, got %s", path, want, got.Kind()),
		Err:      ErrTypeValidation,
	}
}

func (p *argPlan) missingError(missing []string) error {
	return &ArgumentError{
		Function: p.function,
		Param:    missing[0],
		Names:    missing,
		Reason:   "missing required parameter(s): " + strings.Join(missing, ", "),
		Err:      ErrMissingParameter,
	}
}

func (p *argPlan) constraintError(path, reason string) error {
	return &ArgumentError{
		Function: p.function,
		Param:    path,
		Reason:   fmt.Sprintf("parameter %q: %s", path, reason),
		Err:      ErrConstraint,
	}
}

func formatEnum(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
