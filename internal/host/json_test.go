package host_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/host"
	"github.com/jcorbin/pohlang/internal/value"
)

func Test_ParseJSON_ObjectsAndArraysBecomeValues(t *testing.T) {
	s := host.New()
	v, err := s.ParseJSON(`{"name": "Ada", "tags": ["x", "y"], "age": 30, "active": true}`)
	require.NoError(t, err)
	require.Equal(t, value.Dict, v.Kind)

	name, ok := v.Dct.Get("name")
	require.True(t, ok)
	assert.Equal(t, value.Str("Ada"), name)

	tags, ok := v.Dct.Get("tags")
	require.True(t, ok)
	assert.Equal(t, value.List, tags.Kind)
	assert.Len(t, tags.Lst, 2)

	active, ok := v.Dct.Get("active")
	require.True(t, ok)
	assert.Equal(t, value.Bool_(true), active)
}

func Test_ParseJSON_InvalidIsError(t *testing.T) {
	s := host.New()
	_, err := s.ParseJSON("{not json")
	assert.Error(t, err)
}

func Test_ToJSON_RoundTrips(t *testing.T) {
	s := host.New()
	d := value.NewDict()
	d.Set("n", value.Num(3))
	d.Set("ok", value.Bool_(true))
	v := value.DictV(d)

	str, err := s.ToJSON(v)
	require.NoError(t, err)

	back, err := s.ParseJSON(str)
	require.NoError(t, err)
	n, ok := back.Dct.Get("n")
	require.True(t, ok)
	assert.Equal(t, value.Num(3), n)
}

func Test_JSONGetSetPush(t *testing.T) {
	s := host.New()
	obj, err := s.ParseJSON(`{"items": [1, 2]}`)
	require.NoError(t, err)

	got, err := s.JSONGet(obj, "items.0")
	require.NoError(t, err)
	assert.Equal(t, value.Num(1), got)

	updated, err := s.JSONSet(obj, "items.0", value.Num(99))
	require.NoError(t, err)
	got, err = s.JSONGet(updated, "items.0")
	require.NoError(t, err)
	assert.Equal(t, value.Num(99), got)

	pushed, err := s.JSONPush(obj, "items", value.Num(3))
	require.NoError(t, err)
	items, err := s.JSONGet(pushed, "items")
	require.NoError(t, err)
	assert.Len(t, items.Lst, 3)
	assert.Equal(t, value.Num(3), items.Lst[2])
}

func Test_JSONLength(t *testing.T) {
	s := host.New()
	list := value.ListV([]value.Value{value.Num(1), value.Num(2), value.Num(3)})
	n, err := s.JSONLength(list)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func Test_NewJSONObjectAndArray(t *testing.T) {
	s := host.New()
	assert.Equal(t, value.Dict, s.NewJSONObject().Kind)
	assert.Equal(t, value.List, s.NewJSONArray().Kind)
}
