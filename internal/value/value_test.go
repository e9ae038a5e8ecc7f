package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/pohlang/internal/value"
)

func Test_Truthy(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    value.Value
		want bool
	}{
		{"null", value.NullV(), false},
		{"zero number", value.Num(0), false},
		{"nonzero number", value.Num(-1), true},
		{"empty string", value.Str(""), false},
		{"nonempty string", value.Str("x"), true},
		{"false bool", value.Bool_(false), false},
		{"true bool", value.Bool_(true), true},
		{"empty list", value.ListV(nil), false},
		{"nonempty list", value.ListV([]value.Value{value.Num(1)}), true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.Truthy())
		})
	}
}

func Test_String(t *testing.T) {
	for _, tc := range []struct {
		name string
		v    value.Value
		want string
	}{
		{"null", value.NullV(), "null"},
		{"integer number", value.Num(3), "3"},
		{"fractional number", value.Num(2.5), "2.5"},
		{"string", value.Str("hi"), "hi"},
		{"true", value.Bool_(true), "true"},
		{"list", value.ListV([]value.Value{value.Num(1), value.Str("a")}), "[1, a]"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.String())
		})
	}
}

func Test_Dict_InsertionOrderAndLastWriteWins(t *testing.T) {
	d := value.NewDict()
	d.Set("b", value.Num(2))
	d.Set("a", value.Num(1))
	d.Set("b", value.Num(20))

	assert.Equal(t, []string{"b", "a"}, d.Keys())
	v, ok := d.Get("b")
	assert.True(t, ok)
	assert.Equal(t, value.Num(20), v)
	assert.Equal(t, 2, d.Len())
}

func Test_Clone_DeepCopiesListsAndDicts(t *testing.T) {
	inner := value.NewDict()
	inner.Set("x", value.Num(1))
	orig := value.ListV([]value.Value{value.DictV(inner)})

	clone := orig.Clone()
	clone.Lst[0].Dct.Set("x", value.Num(99))

	origVal, _ := inner.Get("x")
	assert.Equal(t, value.Num(1), origVal, "cloning must not alias the original dict")
}
