package fncall

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ValueKind is the type tag of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindArray
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a loosely typed argument value with an explicit type tag.
// The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

func Null() Value             { return Value{} }
func String(s string) Value   { return Value{kind: KindString, str: s} }
func Int(i int64) Value       { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value   { return Value{kind: KindNumber, f: f} }
func Bool(b bool) Value       { return Value{kind: KindBoolean, b: b} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }
func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, obj: m}
}

// ValueOf converts a native Go value (typically decoded JSON) into a Value.
// Supported: nil, Value, string, bool, all integer and float types, json.Number,
// slices/arrays and string-keyed maps of supported values, and pointers to them.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return fromFloat(f)
	case []any:
		out := make([]Value, len(x))
		for i, el := range x {
			ev, err := ValueOf(el)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ev
		}
		return Array(out...), nil
	case map[string]any:
		out := make(map[string]Value, len(x))
		for k, el := range x {
			ev, err := ValueOf(el)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = ev
		}
		return Object(out), nil
	}
	return valueOfReflect(reflect.ValueOf(v))
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("non-finite number %v", f)
	}
	return Float(f), nil
}

// valueOfReflect handles typed slices and maps ([]string, map[string]int, ...).
func valueOfReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		out := make([]Value, rv.Len())
		for i := range rv.Len() {
			ev, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ev
		}
		return Array(out...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return Null(), nil
		}
		out := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := ValueOf(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", iter.Key().String(), err)
			}
			out[iter.Key().String()] = ev
		}
		return Object(out), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float())
	case reflect.Invalid:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %s", rv.Type())
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBoolean }

// AsInt returns the integer payload. Integral numbers are accepted too.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInteger:
		return v.i, true
	case KindNumber:
		if i, ok := integral(v.f); ok {
			return i, true
		}
	}
	return 0, false
}

// AsFloat returns the numeric payload for both integers and numbers.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindNumber:
		return v.f, true
	}
	return 0, false
}

func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Interface converts back to plain Go values: nil, string, int64, float64, bool, []any, map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.i
	case KindNumber:
		return v.f
	case KindBoolean:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, el := range v.arr {
			out[i] = el.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, el := range v.obj {
			out[k] = el.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports deep equality. Two integers compare exactly; an integer and a number
// compare by numeric value.
func (v Value) Equal(o Value) bool {
	if v.kind == KindInteger && o.kind == KindInteger {
		return v.i == o.i
	}
	if a, ok := v.AsFloat(); ok {
		b, ok := o.AsFloat()
		return ok && a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindBoolean:
		return v.b == o.b
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, el := range v.obj {
			other, ok := o.obj[k]
			if !ok || !el.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value as compact JSON; used in error messages and documentation.
func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Sprintf("%v", v.Interface())
	}
	return string(b)
}

func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Interface()) }

func (v *Value) UnmarshalJSON(data []byte) error {
	native, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	parsed, err := ValueOf(native)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Arguments is the validated argument mapping passed to a Handler.
// Integer parameters are already coerced to KindInteger.
type Arguments map[string]Value

func (a Arguments) Lookup(name string) (Value, bool) {
	v, ok := a[name]
	return v, ok
}

func (a Arguments) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns the string argument or "" when absent or of another kind.
func (a Arguments) String(name string) string {
	s, _ := a[name].AsString()
	return s
}

func (a Arguments) Int(name string) int64 {
	i, _ := a[name].AsInt()
	return i
}

func (a Arguments) Float(name string) float64 {
	f, _ := a[name].AsFloat()
	return f
}

func (a Arguments) Bool(name string) bool {
	b, _ := a[name].AsBool()
	return b
}

func (a Arguments) Array(name string) []Value {
	arr, _ := a[name].AsArray()
	return arr
}

func (a Arguments) Object(name string) map[string]Value {
	obj, _ := a[name].AsObject()
	return obj
}

// Native converts the arguments to a plain map (see Value.Interface).
func (a Arguments) Native() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v.Interface()
	}
	return out
}

// Decode copies the arguments into out (a pointer to a struct or map) through JSON.
func (a Arguments) Decode(out any) error {
	data, err := json.Marshal(a.Native())
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// DecodeArguments parses a JSON object of arguments as produced by a model tool call.
// Numbers are kept as json.Number so integers survive without float rounding.
// Blank input yields an empty map.
func DecodeArguments(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	v, err := decodeJSONValue(raw)
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("arguments must be a JSON object, got %s", jsonTypeName(v))
	}
}

func decodeJSONValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected trailing data after JSON value")
	}
	return v, nil
}

func jsonTypeName(v any) string {
	if val, err := ValueOf(v); err == nil {
		return val.Kind().String()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}
