package plugin

import (
	"encoding/json"

	"github.com/rohanthewiz/serr"
)

// Value holds one plugin config value: a string, a number, a boolean, a list
// of strings, or null. The zero Value is null.
type Value struct {
	kind valueKind
	str  string
	num  float64
	b    bool
	list []string
}

type valueKind uint8

const (
	kindNull valueKind = iota
	kindString
	kindNumber
	kindBool
	kindList
)

// Values is a coerced plugin config object.
type Values map[string]Value

func StringValue(s string) Value { return Value{kind: kindString, str: s} }

func NumberValue(n float64) Value { return Value{kind: kindNumber, num: n} }

func BoolValue(b bool) Value { return Value{kind: kindBool, b: b} }

func StringsValue(ss []string) Value {
	list := make([]string, len(ss))
	copy(list, ss)
	return Value{kind: kindList, list: list}
}

func (v Value) IsNull() bool { return v.kind == kindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == kindString }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == kindNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == kindBool }

func (v Value) AsStrings() ([]string, bool) {
	if v.kind != kindList {
		return nil, false
	}
	list := make([]string, len(v.list))
	copy(list, v.list)
	return list, true
}

// Any returns the value as a plain Go value for JSON-shaped output.
func (v Value) Any() any {
	switch v.kind {
	case kindString:
		return v.str
	case kindNumber:
		return v.num
	case kindBool:
		return v.b
	case kindList:
		list, _ := v.AsStrings()
		return list
	default:
		return nil
	}
}

// FromAny narrows a decoded JSON value into a Value. Arrays narrow only when
// every element is a string.
func FromAny(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Value{}, true
	case string:
		return StringValue(t), true
	case bool:
		return BoolValue(t), true
	case float64:
		return NumberValue(t), true
	case int:
		return NumberValue(float64(t)), true
	case []string:
		return StringsValue(t), true
	case []any:
		ss := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return Value{}, false
			}
			ss[i] = s
		}
		return StringsValue(ss), true
	}
	return Value{}, false
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	// json passes "null" through without touching the target, so it has to
	// be handled before the typed attempts
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberValue(n)
		return nil
	}
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*v = StringsValue(ss)
		return nil
	}
	return serr.New("config values must be a string, number, boolean, string list, or null")
}

// String returns the value under key when it is a string.
func (vs Values) String(key string) (string, bool) {
	return vs[key].AsString()
}

// Number returns the value under key when it is a number.
func (vs Values) Number(key string) (float64, bool) {
	return vs[key].AsNumber()
}

// Bool returns the value under key when it is a boolean.
func (vs Values) Bool(key string) (bool, bool) {
	return vs[key].AsBool()
}

// Strings returns the value under key when it is a string list.
func (vs Values) Strings(key string) ([]string, bool) {
	return vs[key].AsStrings()
}

// Any returns the whole config as a plain JSON-shaped map.
func (vs Values) Any() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Any()
	}
	return out
}
