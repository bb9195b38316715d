package plugin

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestValueJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		json string
	}{
		{"string", StringValue("hello"), `"hello"`},
		{"number", NumberValue(42.5), `42.5`},
		{"bool", BoolValue(true), `true`},
		{"strings", StringsValue([]string{"a", "b"}), `["a","b"]`},
		{"null", Value{}, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.val)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("marshal = %s; want %s", data, tt.json)
			}

			var back Value
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(back.Any(), tt.val.Any()) {
				t.Errorf("round trip = %#v; want %#v", back.Any(), tt.val.Any())
			}
		})
	}
}

func TestValueUnmarshalRejectsObjects(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"nested": true}`), &v); err == nil {
		t.Error("expected error for object value")
	}
}

func TestValuesUnmarshal(t *testing.T) {
	var vals Values
	raw := `{"units": "celsius", "max": 10, "safe": false, "tags": ["x"], "gone": null}`
	if err := json.Unmarshal([]byte(raw), &vals); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got, ok := vals.String("units"); !ok || got != "celsius" {
		t.Errorf("units = %q, %v", got, ok)
	}
	if got, ok := vals.Number("max"); !ok || got != 10 {
		t.Errorf("max = %v, %v", got, ok)
	}
	if got, ok := vals.Bool("safe"); !ok || got != false {
		t.Errorf("safe = %v, %v", got, ok)
	}
	if got, ok := vals.Strings("tags"); !ok || len(got) != 1 {
		t.Errorf("tags = %v, %v", got, ok)
	}
	if v, ok := vals["gone"]; !ok || !v.IsNull() {
		t.Errorf("gone = %#v; want null", v)
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		wantOK bool
	}{
		{"string", "x", true},
		{"float64", 1.5, true},
		{"int", 3, true},
		{"bool", true, true},
		{"nil", nil, true},
		{"string slice", []string{"a"}, true},
		{"any slice of strings", []any{"a", "b"}, true},
		{"mixed slice", []any{"a", 1}, false},
		{"map", map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := FromAny(tt.in)
			if ok != tt.wantOK {
				t.Errorf("FromAny(%#v) ok = %v; want %v", tt.in, ok, tt.wantOK)
			}
		})
	}
}

func TestValuesMissingKey(t *testing.T) {
	vals := Values{}
	if _, ok := vals.String("absent"); ok {
		t.Error("missing key reported ok")
	}
	if _, ok := vals.Number("absent"); ok {
		t.Error("missing key reported ok")
	}
	if _, ok := vals.Bool("absent"); ok {
		t.Error("missing key reported ok")
	}
}
