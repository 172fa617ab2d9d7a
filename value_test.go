package fncall

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{name: "nil", in: nil, want: Null()},
		{name: "string", in: "x", want: String("x")},
		{name: "bool", in: true, want: Bool(true)},
		{name: "int", in: 3, want: Int(3)},
		{name: "uint8", in: uint8(7), want: Int(7)},
		{name: "float", in: 1.5, want: Float(1.5)},
		{name: "json integer", in: json.Number("12"), want: Int(12)},
		{name: "json float", in: json.Number("1.25"), want: Float(1.25)},
		{name: "typed slice", in: []string{"a", "b"}, want: Array(String("a"), String("b"))},
		{name: "typed map", in: map[string]int{"k": 1}, want: Object(map[string]Value{"k": Int(1)})},
		{name: "nested", in: map[string]any{"l": []any{1, nil}}, want: Object(map[string]Value{"l": Array(Int(1), Null())})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueOf_Unsupported(t *testing.T) {
	t.Parallel()
	for _, in := range []any{math.NaN(), math.Inf(1), map[int]string{1: "x"}, struct{}{}, make(chan int)} {
		_, err := ValueOf(in)
		assert.Error(t, err, "%T", in)
	}
}

func TestValue_Accessors(t *testing.T) {
	t.Parallel()
	i, ok := Float(4).AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(4), i)

	_, ok = Float(4.5).AsInt()
	assert.False(t, ok)

	f, ok := Int(2).AsFloat()
	assert.True(t, ok)
	assert.InDelta(t, 2.0, f, 0)

	_, ok = String("2").AsInt()
	assert.False(t, ok)
	assert.True(t, Null().IsNull())
	assert.Equal(t, KindNull, Value{}.Kind())
	assert.Equal(t, "integer", KindInteger.String())
}

func TestValue_Equal(t *testing.T) {
	t.Parallel()
	assert.True(t, Int(2).Equal(Float(2)))
	assert.False(t, Int(2).Equal(String("2")))
	assert.True(t, Array(Int(1), String("a")).Equal(Array(Float(1), String("a"))))
	assert.False(t, Array(Int(1)).Equal(Array(Int(1), Int(2))))
	assert.True(t, Object(map[string]Value{"a": Bool(true)}).Equal(Object(map[string]Value{"a": Bool(true)})))
	assert.False(t, Object(map[string]Value{"a": Bool(true)}).Equal(Object(map[string]Value{"b": Bool(true)})))
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Int(9007199254740993).Equal(Int(9007199254740992)))
	assert.True(t, Int(9007199254740993).Equal(Int(9007199254740993)))
}

func TestValue_StringAndJSON(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `"hi"`, String("hi").String())
	assert.Equal(t, "3", Int(3).String())
	assert.Equal(t, `[1,"a"]`, Array(Int(1), String("a")).String())

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"n": 10, "f": 0.5, "l": [true]}`), &v))
	obj, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, Int(10), obj["n"])
	assert.Equal(t, Float(0.5), obj["f"])

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 10, "f": 0.5, "l": [true]}`, string(data))
}

func TestArguments_Accessors(t *testing.T) {
	t.Parallel()
	args := Arguments{
		"s": String("x"),
		"i": Int(3),
		"f": Float(0.5),
		"b": Bool(true),
		"l": Array(Int(1)),
		"o": Object(map[string]Value{"k": String("v")}),
	}
	assert.Equal(t, "x", args.String("s"))
	assert.Equal(t, int64(3), args.Int("i"))
	assert.InDelta(t, 0.5, args.Float("f"), 0)
	assert.True(t, args.Bool("b"))
	assert.Equal(t, []Value{Int(1)}, args.Array("l"))
	assert.Equal(t, String("v"), args.Object("o")["k"])
	assert.Empty(t, args.String("missing"))
	assert.Empty(t, args.String("i"))
	assert.True(t, args.Has("s"))
	assert.False(t, args.Has("missing"))
	_, ok := args.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"k": "v"}, args.Native()["o"])
}

func TestArguments_Decode(t *testing.T) {
	t.Parallel()
	type target struct {
		City  string   `json:"city"`
		Days  int      `json:"days"`
		Units []string `json:"units"`
	}
	args := Arguments{"city": String("Oslo"), "days": Int(3), "units": Array(String("c"))}
	var out target
	require.NoError(t, args.Decode(&out))
	assert.Equal(t, target{City: "Oslo", Days: 3, Units: []string{"c"}}, out)
}

func TestDecodeArguments(t *testing.T) {
	t.Parallel()
	m, err := DecodeArguments([]byte(`{"a": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), m["a"])

	for _, blank := range []string{"", "  ", "null"} {
		m, err := DecodeArguments([]byte(blank))
		require.NoError(t, err)
		assert.Empty(t, m)
	}

	for _, bad := range []string{`[1]`, `"x"`, `{"a":1} {"b":2}`, `{`} {
		_, err := DecodeArguments([]byte(bad))
		assert.Error(t, err, bad)
	}
}
