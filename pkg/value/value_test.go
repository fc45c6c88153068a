package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nanov7/nanov7/pkg/value"
)

func TestNumberRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   float64
	}{
		{"zero", 0},
		{"negative", -42.5},
		{"large", 1e300},
		{"small", 5e-300},
		{"inf", math.Inf(1)},
		{"neg inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := value.FromNumber(tt.in)
			assert.True(t, value.IsNumber(v))
			assert.Equal(t, tt.in, value.Number(v))
		})
	}
}

func TestNaNCanonicalization(t *testing.T) {
	a := value.FromNumber(math.NaN())
	b := value.FromNumber(math.Float64frombits(0x7FF8_0000_0000_0001))
	assert.Equal(t, value.NaN, a)
	assert.Equal(t, value.NaN, b)
	assert.False(t, value.IsNumber(a))
	assert.True(t, math.IsNaN(value.Number(a)))
}

func TestSingletons(t *testing.T) {
	assert.True(t, value.IsUndefined(value.Undefined))
	assert.True(t, value.IsNull(value.Null))
	assert.True(t, value.IsBoolean(value.True))
	assert.True(t, value.IsBoolean(value.False))
	assert.True(t, value.Bool(value.True))
	assert.False(t, value.Bool(value.False))
	assert.NotEqual(t, value.Undefined, value.Null)
	assert.NotEqual(t, value.Undefined, value.NaN)
}

func TestInlineString(t *testing.T) {
	tests := []string{"", "a", "ab", "abcde", "hello"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			v, ok := value.InlineString(s)
			if len(s) > 5 {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.True(t, value.IsString(v))
			assert.Equal(t, s, value.InlineStringValue(v))
		})
	}
}

func TestInlineStringTooLong(t *testing.T) {
	_, ok := value.InlineString("too-long-for-inline")
	assert.False(t, ok)
}

func TestRefRoundTrip(t *testing.T) {
	v := value.FromRef(value.TagObject, 12345)
	assert.True(t, value.IsObject(v))
	assert.Equal(t, value.ObjectRef(12345), value.Ref(v))
	assert.False(t, value.IsFunction(v))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "number", value.TypeOf(value.FromNumber(1)))
	assert.Equal(t, "number", value.TypeOf(value.NaN))
	assert.Equal(t, "undefined", value.TypeOf(value.Undefined))
	assert.Equal(t, "object", value.TypeOf(value.Null))
	assert.Equal(t, "boolean", value.TypeOf(value.True))
	s, _ := value.InlineString("hi")
	assert.Equal(t, "string", value.TypeOf(s))
	assert.Equal(t, "object", value.TypeOf(value.FromRef(value.TagObject, 1)))
	assert.Equal(t, "function", value.TypeOf(value.FromRef(value.TagFunction, 1)))
}
