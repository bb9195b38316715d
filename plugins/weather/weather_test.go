package weather

import (
	"context"
	"strings"
	"testing"

	"plugyard/plugin"
)

func newTool(t *testing.T, cfg map[string]any, locale string) plugin.Tool {
	t.Helper()
	exp := New()
	def, ok := exp.Tool("get_weather")
	if !ok {
		t.Fatal("get_weather is not exported")
	}
	return def.CreateTool(&plugin.Context{
		Locale: locale,
		Config: exp.Manifest.ConfigSchema.Coerce(cfg),
		Logger: plugin.NopLogger{},
		Store:  plugin.NopStore{},
	})
}

func execute(t *testing.T, tool plugin.Tool, params map[string]any) map[string]any {
	t.Helper()
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	out, ok := res.(map[string]any)
	if !ok {
		t.Fatalf("result type = %T", res)
	}
	return out
}

func TestExportIsValid(t *testing.T) {
	if err := New().Check(); err != nil {
		t.Fatalf("export check failed: %v", err)
	}
}

func TestGetWeatherDefaultsToCelsius(t *testing.T) {
	tool := newTool(t, nil, "en")
	out := execute(t, tool, map[string]any{"city": "Tokyo"})

	if out["temperature"] != 18.5 {
		t.Errorf("temperature = %v; want 18.5", out["temperature"])
	}
	if out["units"] != "celsius" {
		t.Errorf("units = %v; want celsius", out["units"])
	}
	if out["condition"] != "partly cloudy" {
		t.Errorf("condition = %v", out["condition"])
	}
	msg := out["message"].(string)
	if !strings.Contains(msg, "Tokyo") || !strings.Contains(msg, "18.5°C") {
		t.Errorf("message = %q", msg)
	}
}

func TestGetWeatherFahrenheitFromConfig(t *testing.T) {
	tool := newTool(t, map[string]any{"units": "fahrenheit"}, "en")
	out := execute(t, tool, map[string]any{"city": "tokyo"})

	if out["temperature"] != 65.3 {
		t.Errorf("temperature = %v; want 65.3", out["temperature"])
	}
	msg := out["message"].(string)
	if !strings.Contains(msg, "Tokyo") || !strings.Contains(msg, "65.3°F") {
		t.Errorf("message = %q", msg)
	}
}

func TestParamUnitsOverrideConfig(t *testing.T) {
	tool := newTool(t, map[string]any{"units": "celsius"}, "en")
	out := execute(t, tool, map[string]any{"city": "Tokyo", "units": "fahrenheit"})

	if out["temperature"] != 65.3 {
		t.Errorf("temperature = %v; want 65.3", out["temperature"])
	}
	if out["units"] != "fahrenheit" {
		t.Errorf("units = %v", out["units"])
	}
}

func TestCityLookupIsCaseInsensitive(t *testing.T) {
	tool := newTool(t, nil, "en")
	out := execute(t, tool, map[string]any{"city": "  NEW YORK "})

	if out["city"] != "New York" {
		t.Errorf("city = %v; want New York", out["city"])
	}
	if out["temperature"] != 16.0 {
		t.Errorf("temperature = %v; want 16", out["temperature"])
	}
}

func TestUnknownCityReturnsMessageNotError(t *testing.T) {
	tool := newTool(t, nil, "en")
	out := execute(t, tool, map[string]any{"city": "Atlantis"})

	if _, hasTemp := out["temperature"]; hasTemp {
		t.Error("unknown city result carries a temperature")
	}
	msg := out["message"].(string)
	if !strings.Contains(msg, "Atlantis") {
		t.Errorf("message = %q; want the city named", msg)
	}
}

func TestLocalizedMessages(t *testing.T) {
	t.Run("zh from locale", func(t *testing.T) {
		tool := newTool(t, nil, "zh")
		out := execute(t, tool, map[string]any{"city": "Tokyo"})
		msg := out["message"].(string)
		if !strings.Contains(msg, "当前天气") || !strings.Contains(msg, "Tokyo") {
			t.Errorf("message = %q", msg)
		}
	})

	t.Run("config language beats locale", func(t *testing.T) {
		tool := newTool(t, map[string]any{"language": "ja"}, "zh")
		out := execute(t, tool, map[string]any{"city": "Tokyo"})
		msg := out["message"].(string)
		if !strings.Contains(msg, "現在の天気") {
			t.Errorf("message = %q; want Japanese", msg)
		}
	})

	t.Run("unsupported locale falls back to en", func(t *testing.T) {
		tool := newTool(t, nil, "fr")
		out := execute(t, tool, map[string]any{"city": "Tokyo"})
		msg := out["message"].(string)
		if !strings.Contains(msg, "Current weather in Tokyo") {
			t.Errorf("message = %q; want English fallback", msg)
		}
	})
}

func TestMissingCityIsAnError(t *testing.T) {
	tool := newTool(t, nil, "en")
	for _, params := range []map[string]any{nil, {"city": ""}, {"city": "   "}} {
		if _, err := tool.Execute(context.Background(), params); err == nil {
			t.Errorf("Execute(%v) succeeded; want an error", params)
		}
	}
}

func TestValidateConfigRejectsBadUnits(t *testing.T) {
	exp := New()
	cfg := exp.Manifest.ConfigSchema.Coerce(map[string]any{"units": "kelvin"})
	if err := exp.ValidateConfig(cfg); err == nil {
		t.Error("kelvin passed config validation")
	}
	cfg = exp.Manifest.ConfigSchema.Coerce(map[string]any{"units": "fahrenheit"})
	if err := exp.ValidateConfig(cfg); err != nil {
		t.Errorf("fahrenheit rejected: %v", err)
	}
}
