// Package catalog reads function declarations from a YAML (or JSON) catalog file:
//
//	functions:
//	  - name: get_weather
//	    description: Current weather for a city
//	    parameters:
//	      city: {type: string, description: City name}
//	    required: [city]
package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skosovsky/fncall"
)

type file struct {
	Functions []map[string]any `yaml:"functions"`
}

// Load reads and parses the catalog at path.
func Load(path string) ([]fncall.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	schemas, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return schemas, nil
}

// Parse decodes catalog content. Every declaration goes through fncall.DeclarationFromMap,
// so errors wrap fncall.ErrSchemaInvalid and name the offending entry.
func Parse(data []byte) ([]fncall.Schema, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	schemas := make([]fncall.Schema, 0, len(f.Functions))
	for i, decl := range f.Functions {
		s, err := fncall.DeclarationFromMap(decl)
		if err != nil {
			return nil, fmt.Errorf("functions[%d]: %w", i, err)
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// EchoHandler returns the validated arguments. It stands in for real handlers when a
// catalog is only checked, not executed.
func EchoHandler(_ context.Context, args fncall.Arguments) (any, error) {
	return args.Native(), nil
}

// Register adds every schema to reg with handler.
func Register(reg *fncall.Registry, schemas []fncall.Schema, handler fncall.Handler) error {
	for _, s := range schemas {
		if err := reg.Register(s.Name, handler, s); err != nil {
			return err
		}
	}
	return nil
}
