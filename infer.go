package fncall

import (
	"fmt"
	"maps"
	"slices"
)

// InferParameters builds parameter specs from sample values: strings, booleans, integers,
// floats, sequences and mappings map to their parameter types. Each parameter gets the
// description "Parameter: <name>". Other value types fail with *SchemaError.
func InferParameters(sample map[string]any) (map[string]ParameterSpec, error) {
	out := make(map[string]ParameterSpec, len(sample))
	for _, name := range slices.Sorted(maps.Keys(sample)) {
		v, err := ValueOf(sample[name])
		if err != nil {
			return nil, &SchemaError{
				Field:  "parameters." + name,
				Reason: fmt.Sprintf("unsupported parameter type %T", sample[name]),
			}
		}
		typ, ok := inferredTypes[v.Kind()]
		if !ok {
			return nil, &SchemaError{Field: "parameters." + name, Reason: "cannot infer a type from null"}
		}
		out[name] = ParameterSpec{Type: typ, Description: "Parameter: " + name}
	}
	return out, nil
}

var inferredTypes = map[ValueKind]ParameterType{
	KindString:  TypeString,
	KindInteger: TypeInteger,
	KindNumber:  TypeNumber,
	KindBoolean: TypeBoolean,
	KindArray:   TypeArray,
	KindObject:  TypeObject,
}
