package fncall

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func mustPlan(t *testing.T, s Schema) *argPlan {
	t.Helper()
	if s.Name == "" {
		s.Name = "f"
	}
	plan, err := compileSchema(s)
	require.NoError(t, err)
	return plan
}

func TestValidate_Types(t *testing.T) {
	t.Parallel()
	plan := mustPlan(t, Schema{Parameters: map[string]ParameterSpec{
		"s": {Type: TypeString},
		"i": {Type: TypeInteger},
		"n": {Type: TypeNumber},
		"b": {Type: TypeBoolean},
		"a": {Type: TypeArray},
		"o": {Type: TypeObject},
	}})
	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
		param   string
	}{
		{name: "all valid", args: map[string]any{
			"s": "x", "i": 1, "n": 1.5, "b": true, "a": []any{1, "two"}, "o": map[string]any{"k": "v"},
		}},
		{name: "integer accepts integral float", args: map[string]any{"i": 3.0}},
		{name: "integer accepts json number", args: map[string]any{"i": json.Number("7")}},
		{name: "number accepts integer", args: map[string]any{"n": 2}},
		{name: "null is absent", args: map[string]any{"s": nil}},
		{name: "string rejects number", args: map[string]any{"s": 1}, wantErr: true, param: "s"},
		{name: "integer rejects fraction", args: map[string]any{"i": 1.5}, wantErr: true, param: "i"},
		{name: "integer rejects string digits", args: map[string]any{"i": "5"}, wantErr: true, param: "i"},
		{name: "number rejects bool", args: map[string]any{"n": true}, wantErr: true, param: "n"},
		{name: "boolean rejects string", args: map[string]any{"b": "true"}, wantErr: true, param: "b"},
		{name: "array rejects object", args: map[string]any{"a": map[string]any{}}, wantErr: true, param: "a"},
		{name: "object rejects array", args: map[string]any{"o": []any{}}, wantErr: true, param: "o"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := plan.validate(tt.args, false)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrTypeValidation)
			var ae *ArgumentError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.param, ae.Param)
		})
	}
}

func TestValidate_IntegerCoercion(t *testing.T) {
	t.Parallel()
	plan := mustPlan(t, Schema{Parameters: map[string]ParameterSpec{
		"i":   {Type: TypeInteger},
		"ids": {Type: TypeArray, Items: &ParameterSpec{Type: TypeInteger}},
	}})
	args, err := plan.validate(map[string]any{"i": 4.0, "ids": []any{1.0, json.Number("2")}}, false)
	require.NoError(t, err)
	assert.Equal(t, KindInteger, args["i"].Kind())
	assert.Equal(t, int64(4), args.Int("i"))
	assert.Equal(t, []Value{Int(1), Int(2)}, args.Array("ids"))
}

func TestValidate_NestedPaths(t *testing.T) {
	t.Parallel()
	plan := mustPlan(t, Schema{Parameters: map[string]ParameterSpec{
		"filter": {Type: TypeObject, Properties: map[string]ParameterSpec{
			"city":  {Type: TypeString, Required: true},
			"limit": {Type: TypeInteger},
		}},
		"tags": {Type: TypeArray, Items: &ParameterSpec{Type: TypeString}},
	}})

	_, err := plan.validate(map[string]any{"filter": map[string]any{"limit": 2}}, false)
	require.ErrorIs(t, err, ErrMissingParameter)
	var ae *ArgumentError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "filter.city", ae.Param)

	_, err = plan.validate(map[string]any{"filter": map[string]any{"city": "Oslo", "limit": "two"}}, false)
	require.ErrorIs(t, err, ErrTypeValidation)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "filter.limit", ae.Param)

	_, err = plan.validate(map[string]any{"tags": []any{"a", "b", 3}}, false)
	require.ErrorIs(t, err, ErrTypeValidation)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "tags[2]", ae.Param)

	args, err := plan.validate(map[string]any{"filter": map[string]any{"city": "Oslo", "limit": 2.0}}, false)
	require.NoError(t, err)
	assert.Equal(t, Int(2), args.Object("filter")["limit"])
}

func TestValidate_Enum(t *testing.T) {
	t.Parallel()
	plan := mustPlan(t, Schema{Parameters: map[string]ParameterSpec{
		"unit":  {Type: TypeString, Enum: []any{"celsius", "fahrenheit"}},
		"level": {Type: TypeInteger, Enum: []any{1, 2, 3}},
		"mode":  {Type: TypeEnum, Enum: []any{"fast", 2}},
	}})

	_, err := plan.validate(map[string]any{"unit": "celsius", "level": 2.0, "mode": 2}, false)
	require.NoError(t, err)

	_, err = plan.validate(map[string]any{"unit": "kelvin"}, false)
	require.ErrorIs(t, err, ErrTypeValidation)
	var ae *ArgumentError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "unit", ae.Param)
	assert.Contains(t, ae.Expected, `"celsius"`)

	_, err = plan.validate(map[string]any{"mode": "slow"}, false)
	require.ErrorIs(t, err, ErrTypeValidation)

	big := mustPlan(t, Schema{Parameters: map[string]ParameterSpec{
		"id": {Type: TypeInteger, Enum: []any{int64(9007199254740993)}},
	}})
	_, err = big.validate(map[string]any{"id": int64(9007199254740993)}, false)
	require.NoError(t, err)
	_, err = big.validate(map[string]any{"id": int64(9007199254740992)}, false)
	require.ErrorIs(t, err, ErrTypeValidation)
}

func TestValidate_Constraints(t *testing.T) {
	t.Parallel()
	plan := mustPlan(t, Schema{Parameters: map[string]ParameterSpec{
		"age":  {Type: TypeInteger, Minimum: ptr(0), Maximum: ptr(150)},
		"code": {Type: TypeString, Pattern: `^[A-Z]{3}$`},
		"tag":  {Type: TypeString, Pattern: `[0-9]+`},
	}})
	_, err := plan.validate(map[string]any{"age": 30, "code": "USD"}, false)
	require.NoError(t, err)
	_, err = plan.validate(map[string]any{"tag": "v2-beta"}, false)
	require.NoError(t, err, "patterns match anywhere unless anchored")

	for _, args := range []map[string]any{
		{"age": -1},
		{"age": 151},
		{"code": "usd"},
		{"tag": "beta"},
	} {
		_, err := plan.validate(args, false)
		require.ErrorIs(t, err, ErrConstraint)
	}
}

func TestValidate_RequiredUnion(t *testing.T) {
	t.Parallel()
	plan := mustPlan(t, Schema{
		Parameters: map[string]ParameterSpec{
			"a": {Type: TypeString},
			"b": {Type: TypeString, Required: true},
			"c": {Type: TypeString},
		},
		Required: []string{"a"},
	})
	_, err := plan.validate(map[string]any{}, false)
	var ae *ArgumentError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []string{"a", "b"}, ae.Names)
}

func TestValidate_EmptySchemaAcceptsEmptyArguments(t *testing.T) {
	t.Parallel()
	plan := mustPlan(t, Schema{})
	args, err := plan.validate(nil, false)
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = plan.validate(map[string]any{"x": 1}, false)
	require.ErrorIs(t, err, ErrUnknownParameter)
}
