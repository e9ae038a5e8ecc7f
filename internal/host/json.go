package host

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/jcorbin/pohlang/internal/value"
)

// ParseJSON decodes a JSON document into the core's own Value tree
// (objects become ordered Dicts, arrays become Lists) so the result is
// indistinguishable from a native list/dict literal once it crosses back
// into the core.
func (s *Services) ParseJSON(str string) (value.Value, error) {
	if !gjson.Valid(str) {
		return value.Value{}, fmt.Errorf("invalid JSON")
	}
	return gjsonToValue(gjson.Parse(str)), nil
}

func gjsonToValue(r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.NullV()
	case gjson.True:
		return value.Bool_(true)
	case gjson.False:
		return value.Bool_(false)
	case gjson.Number:
		return value.Num(r.Num)
	case gjson.String:
		return value.Str(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var items []value.Value
			r.ForEach(func(_, v gjson.Result) bool {
				items = append(items, gjsonToValue(v))
				return true
			})
			return value.ListV(items)
		}
		d := value.NewDict()
		r.ForEach(func(k, v gjson.Result) bool {
			d.Set(k.String(), gjsonToValue(v))
			return true
		})
		return value.DictV(d)
	}
	return value.NullV()
}

// ToJSON renders v as compact JSON.
func (s *Services) ToJSON(v value.Value) (string, error) {
	b, err := json.Marshal(valueToJSONAny(v))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPrettyJSON renders v as indented JSON.
func (s *Services) ToPrettyJSON(v value.Value) (string, error) {
	b, err := json.MarshalIndent(valueToJSONAny(v), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func valueToJSONAny(v value.Value) interface{} {
	switch v.Kind {
	case value.Null:
		return nil
	case value.Number:
		return v.Num
	case value.String:
		return v.Str
	case value.Bool:
		return v.Bl
	case value.List:
		out := make([]interface{}, len(v.Lst))
		for i, it := range v.Lst {
			out[i] = valueToJSONAny(it)
		}
		return out
	case value.Dict:
		out := make(map[string]interface{}, v.Dct.Len())
		for _, k := range v.Dct.Keys() {
			val, _ := v.Dct.Get(k)
			out[k] = valueToJSONAny(val)
		}
		return out
	default:
		return v.String()
	}
}

// JSONGet reads obj's own JSON rendering at path via gjson, then
// re-decodes the result back into the core's Value representation.
func (s *Services) JSONGet(obj value.Value, path string) (value.Value, error) {
	raw, err := s.ToJSON(obj)
	if err != nil {
		return value.Value{}, err
	}
	r := gjson.Get(raw, path)
	if !r.Exists() {
		return value.NullV(), nil
	}
	return gjsonToValue(r), nil
}

// JSONSet writes v at path inside obj via sjson, returning the updated
// tree decoded back into a Value.
func (s *Services) JSONSet(obj value.Value, path string, v value.Value) (value.Value, error) {
	raw, err := s.ToJSON(obj)
	if err != nil {
		return value.Value{}, err
	}
	updated, err := sjson.Set(raw, path, valueToJSONAny(v))
	if err != nil {
		return value.Value{}, err
	}
	return s.ParseJSON(updated)
}

// JSONPush appends v to the array found at path inside obj.
func (s *Services) JSONPush(obj value.Value, path string, v value.Value) (value.Value, error) {
	raw, err := s.ToJSON(obj)
	if err != nil {
		return value.Value{}, err
	}
	updated, err := sjson.Set(raw, path+".-1", valueToJSONAny(v))
	if err != nil {
		return value.Value{}, err
	}
	return s.ParseJSON(updated)
}

// JSONLength returns a list's item count or a dict's key count.
func (s *Services) JSONLength(v value.Value) (int, error) {
	switch v.Kind {
	case value.List:
		return len(v.Lst), nil
	case value.Dict:
		return v.Dct.Len(), nil
	default:
		return 0, fmt.Errorf("value has no JSON length")
	}
}

func (s *Services) NewJSONObject() value.Value { return value.DictV(value.NewDict()) }
func (s *Services) NewJSONArray() value.Value  { return value.ListV(nil) }
