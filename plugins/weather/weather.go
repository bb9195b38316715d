// Package weather is a demo integration that reports current conditions for
// a fixed set of cities. It exercises config defaults, per-request locale
// resolution, and localized result messages without any external service.
package weather

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rohanthewiz/serr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"plugyard/plugin"
)

type cityWeather struct {
	celsius   float64
	condition string
}

var demoCities = map[string]cityWeather{
	"tokyo":         {18.5, "partly cloudy"},
	"london":        {11.0, "light rain"},
	"paris":         {14.2, "overcast"},
	"new york":      {16.0, "clear"},
	"beijing":       {20.1, "sunny"},
	"shanghai":      {22.4, "humid"},
	"sydney":        {24.3, "sunny"},
	"berlin":        {12.7, "windy"},
	"san francisco": {15.5, "foggy"},
	"singapore":     {30.2, "thunderstorms"},
}

var conditionsText = plugin.LocaleText{
	"en": "Current weather in %s: %s, %.1f°%s",
	"zh": "%s当前天气：%s，气温 %.1f°%s",
	"ja": "%sの現在の天気は%s、気温は%.1f°%sです",
}

var unknownCityText = plugin.LocaleText{
	"en": "No weather data available for %s yet",
	"zh": "暂时没有%s的天气数据",
	"ja": "%sの天気データはまだありません",
}

// New builds the weather plugin export.
func New() *plugin.Export {
	return &plugin.Export{
		Manifest: plugin.Manifest{
			Identifier:  "weather",
			Name:        "Weather",
			Version:     "1.1.0",
			Description: "Reports current weather conditions for a city",
			Author:      "Plugyard",
			License:     "MIT",
			Icon:        "🌤",
			Category:    "utilities",
			ConfigSchema: &plugin.Schema{
				Title: "Weather Settings",
				Properties: map[string]plugin.Property{
					"units": {
						Type:        plugin.TypeString,
						Title:       "Temperature Units",
						Description: "Unit used when the request does not choose one",
						Default:     "celsius",
						Enum:        []any{"celsius", "fahrenheit"},
						EnumLabels:  map[string]string{"celsius": "Celsius", "fahrenheit": "Fahrenheit"},
						Widget:      "select",
					},
					"language": {
						Type:        plugin.TypeString,
						Title:       "Message Language",
						Description: "Overrides the conversation locale for result messages",
					},
				},
			},
			Tools: []plugin.ToolDeclaration{{
				ID:          "get_weather",
				Name:        "Get Weather",
				Description: "Current temperature and conditions for a city",
				Prompt: plugin.LocaleText{
					"en": "Look up the current weather when the user asks about conditions in a city.",
					"zh": "当用户询问某个城市的天气时，查询当前天气。",
					"ja": "ユーザーが都市の天気を尋ねたら現在の天気を調べてください。",
				},
			}},
			I18N: &plugin.I18N{
				Locales:       []string{"en", "zh", "ja"},
				DefaultLocale: "en",
			},
		},
		Tools: []plugin.ToolDef{{
			ID:         "get_weather",
			CreateTool: func(pc *plugin.Context) plugin.Tool { return &weatherTool{pc: pc} },
		}},
		ValidateConfig: func(cfg plugin.Values) error {
			if units, ok := cfg.String("units"); ok && units != "celsius" && units != "fahrenheit" {
				return serr.New(fmt.Sprintf("units must be celsius or fahrenheit, got %q", units))
			}
			return nil
		},
	}
}

type weatherTool struct {
	pc *plugin.Context
}

func (t *weatherTool) Description() string {
	return "Reports the current temperature and conditions for a city"
}

func (t *weatherTool) InputSchema() *plugin.Schema {
	return &plugin.Schema{
		Title: "Get Weather",
		Properties: map[string]plugin.Property{
			"city": {
				Type:        plugin.TypeString,
				Title:       "City",
				Description: "City name, e.g. Tokyo",
			},
			"units": {
				Type:        plugin.TypeString,
				Title:       "Units",
				Description: "Overrides the configured temperature unit",
				Enum:        []any{"celsius", "fahrenheit"},
			},
		},
		Required: []string{"city"},
	}
}

func (t *weatherTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	city, ok := plugin.GetString(params, "city")
	if !ok || strings.TrimSpace(city) == "" {
		return nil, serr.New("city parameter is required")
	}

	key := strings.ToLower(strings.TrimSpace(city))
	display := displayCity(key)
	locale := t.messageLocale()

	entry, found := demoCities[key]
	if !found {
		t.pc.Logger.Debug("Weather lookup for unknown city", "city", key)
		return map[string]any{
			"city":    display,
			"message": fmt.Sprintf(unknownCityText.For(locale), display),
		}, nil
	}

	units := t.units(params)
	temperature := entry.celsius
	letter := "C"
	if units == "fahrenheit" {
		temperature = math.Round((entry.celsius*9/5+32)*10) / 10
		letter = "F"
	}

	t.pc.Logger.Debug("Weather lookup", "city", key, "units", units, "locale", locale)
	return map[string]any{
		"city":        display,
		"temperature": temperature,
		"units":       units,
		"condition":   entry.condition,
		"message":     fmt.Sprintf(conditionsText.For(locale), display, entry.condition, temperature, letter),
	}, nil
}

// units prefers a valid request param over the configured default.
func (t *weatherTool) units(params map[string]any) string {
	if u, ok := plugin.GetString(params, "units"); ok {
		if u == "celsius" || u == "fahrenheit" {
			return u
		}
	}
	if u, ok := t.pc.Config.String("units"); ok && u != "" {
		return u
	}
	return "celsius"
}

func (t *weatherTool) messageLocale() string {
	if lang, ok := t.pc.Config.String("language"); ok && lang != "" {
		return lang
	}
	if t.pc.Locale != "" {
		return t.pc.Locale
	}
	return "en"
}

// displayCity title-cases a lowercased city key for display. A cases.Caser
// is not safe for concurrent use, so build one per call.
func displayCity(name string) string {
	return cases.Title(language.English).String(name)
}
