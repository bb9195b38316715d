package plugin

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rohanthewiz/serr"
)

// Property types supported by the schema dialect. The root of a schema is
// always an object, so "object" never appears as a property type.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Schema is the restricted JSON-Schema dialect used for tool params and
// plugin config. Nesting beyond arrays of scalars is deliberately not
// supported; it keeps schema-driven forms renderable.
type Schema struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Properties  map[string]Property `json:"properties"`
	Required    []string            `json:"required,omitempty"`
}

// Property describes one schema field.
type Property struct {
	Type        string            `json:"type"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	EnumLabels  map[string]string `json:"enum_labels,omitempty"`
	Minimum     *float64          `json:"minimum,omitempty"`
	Maximum     *float64          `json:"maximum,omitempty"`
	Items       *Property         `json:"items,omitempty"`

	// Widget is a UI rendering hint: "", "textarea", "select", or "password".
	Widget string `json:"widget,omitempty"`
}

// MarshalJSON pins "type": "object" on the wire so consumers see a regular
// JSON-Schema object without the struct carrying the field.
func (s Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "object", alias: alias(s)})
}

// Check verifies structural invariants: known property types, items present
// on arrays, and every required name declared under properties.
func (s *Schema) Check() error {
	for _, name := range sortedKeys(s.Properties) {
		p := s.Properties[name]
		if err := p.check(); err != nil {
			return serr.Wrap(err, "invalid property", "property", name)
		}
	}
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; !ok {
			return serr.New(fmt.Sprintf("required field %q is not declared in properties", name))
		}
	}
	return nil
}

func (p *Property) check() error {
	switch p.Type {
	case TypeString, TypeNumber, TypeBoolean:
	case TypeArray:
		if p.Items == nil {
			return serr.New("array property needs items")
		}
		if p.Items.Type == TypeArray {
			return serr.New("nested arrays are not supported")
		}
		return p.Items.check()
	default:
		return serr.New(fmt.Sprintf("unsupported property type %q", p.Type))
	}
	return nil
}

// Validate reports the first problem with a candidate params object, or nil.
// Unknown keys pass; tools ignore what they did not declare.
func (s *Schema) Validate(params map[string]any) error {
	for _, name := range s.Required {
		if _, ok := params[name]; !ok {
			return serr.New(fmt.Sprintf("missing required field %q", name))
		}
	}
	for _, name := range sortedKeys(s.Properties) {
		v, ok := params[name]
		if !ok {
			continue
		}
		p := s.Properties[name]
		if err := p.validate(v); err != nil {
			return serr.Wrap(err, fmt.Sprintf("invalid value for %q", name))
		}
	}
	return nil
}

func (p *Property) validate(v any) error {
	if v == nil {
		return nil
	}
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return serr.New(fmt.Sprintf("expected a string, got %T", v))
		}
		if len(p.Enum) > 0 && !enumHas(p.Enum, s) {
			return serr.New(fmt.Sprintf("%q is not one of the allowed values", s))
		}
	case TypeNumber:
		n, ok := toFloat(v)
		if !ok {
			return serr.New(fmt.Sprintf("expected a number, got %T", v))
		}
		if p.Minimum != nil && n < *p.Minimum {
			return serr.New(fmt.Sprintf("%v is below the minimum %v", n, *p.Minimum))
		}
		if p.Maximum != nil && n > *p.Maximum {
			return serr.New(fmt.Sprintf("%v is above the maximum %v", n, *p.Maximum))
		}
		if len(p.Enum) > 0 && !enumHas(p.Enum, n) {
			return serr.New(fmt.Sprintf("%v is not one of the allowed values", n))
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return serr.New(fmt.Sprintf("expected a boolean, got %T", v))
		}
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return serr.New(fmt.Sprintf("expected an array, got %T", v))
		}
		for i, item := range items {
			if err := p.Items.validate(item); err != nil {
				return serr.Wrap(err, fmt.Sprintf("item %d", i))
			}
		}
	}
	return nil
}

// Coerce narrows a raw config object into typed Values. Keys the schema does
// not declare are dropped. Declared keys missing from the input pick up the
// property default when one is set. Number and boolean properties also accept
// their string forms, since config frequently arrives from form fields and
// env files. Anything else that cannot narrow comes through as null.
func (s *Schema) Coerce(raw map[string]any) Values {
	out := make(Values, len(s.Properties))
	for name, p := range s.Properties {
		v, ok := raw[name]
		if !ok {
			if p.Default != nil {
				out[name] = coerceValue(p, p.Default)
			}
			continue
		}
		out[name] = coerceValue(p, v)
	}
	return out
}

func coerceValue(p Property, raw any) Value {
	v, ok := FromAny(raw)
	if !ok {
		return Value{}
	}
	switch p.Type {
	case TypeString:
		if s, ok := v.AsString(); ok {
			return StringValue(s)
		}
	case TypeNumber:
		if n, ok := v.AsNumber(); ok {
			return NumberValue(n)
		}
		if s, ok := v.AsString(); ok {
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return NumberValue(n)
			}
		}
	case TypeBoolean:
		if b, ok := v.AsBool(); ok {
			return BoolValue(b)
		}
		if s, ok := v.AsString(); ok {
			if b, err := strconv.ParseBool(s); err == nil {
				return BoolValue(b)
			}
		}
	case TypeArray:
		if ss, ok := v.AsStrings(); ok {
			return StringsValue(ss)
		}
	}
	return Value{}
}

func enumHas(enum []any, v any) bool {
	for _, e := range enum {
		if e == v {
			return true
		}
		en, eok := toFloat(e)
		vn, vok := toFloat(v)
		if eok && vok && en == vn {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func sortedKeys(m map[string]Property) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
