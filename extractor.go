package fncall

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// Validatable lets an argument struct add checks the schema cannot express.
// Validate runs after the arguments are validated and decoded.
type Validatable interface {
	Validate() error
}

// Extractor derives a Schema from the argument struct T and turns validated Arguments into T.
// Use it in custom orchestrators that want typed arguments without RegisterTyped.
type Extractor[T any] struct {
	schema Schema
	plan   *argPlan
}

// NewExtractor reflects T (a struct) into a Schema named name. Field names follow json tags;
// fields without omitempty are required. Descriptions and enums come from
// jsonschema:"description=...,enum=..." tags or the shorter description:"..." and enum:"a,b" tags.
func NewExtractor[T any](name, description string) (*Extractor[T], error) {
	s, err := SchemaFor[T](name, description)
	if err != nil {
		return nil, err
	}
	plan, err := compileSchema(s)
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{schema: s, plan: plan}, nil
}

// Schema returns a copy of the reflected schema.
func (e *Extractor[T]) Schema() Schema { return e.schema.Clone() }

// ParseAndValidate decodes argsJSON, validates it against the schema, decodes it into T and
// runs Validatable. Errors are *ArgumentError so they can go back to the model.
func (e *Extractor[T]) ParseAndValidate(argsJSON []byte) (T, error) {
	var zero T
	raw, err := DecodeArguments(argsJSON)
	if err != nil {
		return zero, decodeError(e.schema.Name, err)
	}
	args, err := e.plan.validate(raw, false)
	if err != nil {
		return zero, err
	}
	return e.Extract(args)
}

// Extract decodes already validated arguments into T and runs Validatable.
func (e *Extractor[T]) Extract(args Arguments) (T, error) {
	var out T
	if err := args.Decode(&out); err != nil {
		return out, &ArgumentError{Function: e.schema.Name, Reason: err.Error(), Err: ErrTypeValidation}
	}
	if err := runCustomValidation(&out); err != nil {
		var zero T
		if IsArgumentError(err) {
			return zero, err
		}
		return zero, &ArgumentError{Function: e.schema.Name, Reason: err.Error(), Err: ErrConstraint}
	}
	return out, nil
}

// runCustomValidation calls Validate on *T or T, whichever implements Validatable.
func runCustomValidation[T any](ptr *T) error {
	if v, ok := any(ptr).(Validatable); ok {
		return v.Validate()
	}
	if v, ok := any(*ptr).(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// SchemaFor reflects the struct type T into a Schema.
func SchemaFor[T any](name, description string) (Schema, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	reflected := r.Reflect(new(T))
	params, err := toMap(reflected)
	if err != nil {
		return Schema{}, &SchemaError{Function: name, Reason: "reflect arguments: " + err.Error()}
	}
	if params["type"] != "object" {
		return Schema{}, &SchemaError{Function: name, Field: "parameters", Reason: "argument type must be a struct"}
	}
	stripSchemaIDs(params)
	applyFieldTags(params, reflect.TypeFor[T]())
	raw, err := json.Marshal(map[string]any{
		"name":        name,
		"description": description,
		"parameters":  params,
	})
	if err != nil {
		return Schema{}, &SchemaError{Function: name, Reason: err.Error()}
	}
	return ParseDeclaration(raw)
}

// applyFieldTags copies description:"..." and enum:"a,b" struct tags of T's top-level fields
// onto the matching reflected properties.
func applyFieldTags(params map[string]any, typ reflect.Type) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	props, _ := params["properties"].(map[string]any)
	if typ.Kind() != reflect.Struct || len(props) == 0 {
		return
	}
	for _, field := range reflect.VisibleFields(typ) {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		prop, ok := props[name].(map[string]any)
		if name == "" || !ok {
			continue
		}
		if desc, ok := field.Tag.Lookup("description"); ok && desc != "" {
			prop["description"] = desc
		}
		if list, ok := field.Tag.Lookup("enum"); ok && list != "" {
			var values []any
			for v := range strings.SplitSeq(list, ",") {
				values = append(values, strings.TrimSpace(v))
			}
			prop["enum"] = values
		}
	}
}
