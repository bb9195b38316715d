package plugin

import (
	"encoding/json"
	"sort"

	"github.com/rohanthewiz/serr"
)

// Manifest describes a plugin to the platform: identity, the environment it
// needs, its config schema, and the tools it contributes.
type Manifest struct {
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	License     string `json:"license,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Category    string `json:"category,omitempty"`
	Homepage    string `json:"homepage,omitempty"`

	// RequiredEnv names the env vars a plugin cannot run without; OptionalEnv
	// names the ones it can use when present. Both drive the playground form.
	RequiredEnv []string `json:"required_env,omitempty"`
	OptionalEnv []string `json:"optional_env,omitempty"`

	ConfigSchema *Schema `json:"config_schema,omitempty"`

	Tools []ToolDeclaration `json:"tools"`

	I18N *I18N `json:"i18n,omitempty"`
}

// ToolDeclaration is the manifest-side description of one callable tool.
type ToolDeclaration struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Icon        string `json:"icon,omitempty"`

	// NeedsDatasource marks tools that only work against a bound datasource.
	NeedsDatasource bool `json:"needs_datasource,omitempty"`

	// AuthProvider names an external account the tool operates on behalf of,
	// e.g. "microsoft" or "gmail". Empty for tools that need none.
	AuthProvider string `json:"auth_provider,omitempty"`

	// Prompt is the usage guidance handed to the language model.
	Prompt LocaleText `json:"prompt,omitempty"`
}

// I18N declares the locales a plugin can answer in.
type I18N struct {
	Locales       []string `json:"locales"`
	DefaultLocale string   `json:"default_locale"`
}

// Check validates manifest invariants. The registry calls it on every
// registration, so a bad manifest never becomes visible.
func (m *Manifest) Check() error {
	if m.Identifier == "" {
		return serr.New("manifest identifier is required")
	}
	if m.Name == "" {
		return serr.New("manifest name is required", "plugin", m.Identifier)
	}
	if m.Version == "" {
		return serr.New("manifest version is required", "plugin", m.Identifier)
	}
	if len(m.Tools) == 0 {
		return serr.New("manifest declares no tools", "plugin", m.Identifier)
	}
	seen := make(map[string]bool, len(m.Tools))
	for _, t := range m.Tools {
		if t.ID == "" {
			return serr.New("tool id is required", "plugin", m.Identifier)
		}
		if seen[t.ID] {
			return serr.New("duplicate tool id", "plugin", m.Identifier, "tool", t.ID)
		}
		seen[t.ID] = true
	}
	if m.ConfigSchema != nil {
		if err := m.ConfigSchema.Check(); err != nil {
			return serr.Wrap(err, "invalid config schema", "plugin", m.Identifier)
		}
	}
	if m.I18N != nil && m.I18N.DefaultLocale != "" {
		found := false
		for _, loc := range m.I18N.Locales {
			if loc == m.I18N.DefaultLocale {
				found = true
				break
			}
		}
		if !found {
			return serr.New("default locale is not in the declared locales", "plugin", m.Identifier)
		}
	}
	return nil
}

// ToolIDs returns the declared tool ids in declaration order.
func (m *Manifest) ToolIDs() []string {
	ids := make([]string, len(m.Tools))
	for i, t := range m.Tools {
		ids[i] = t.ID
	}
	return ids
}

// LocaleText holds text in one or more locales. On the wire it is either a
// plain string, which applies to every locale, or an object keyed by locale
// tag.
type LocaleText map[string]string

// anyLocale keys text that was declared as a plain string.
const anyLocale = ""

// Text builds a LocaleText that applies to every locale.
func Text(s string) LocaleText { return LocaleText{anyLocale: s} }

func (lt *LocaleText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*lt = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*lt = Text(s)
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return serr.Wrap(err, "prompt must be a string or a locale map")
	}
	*lt = LocaleText(m)
	return nil
}

func (lt LocaleText) MarshalJSON() ([]byte, error) {
	if s, ok := lt[anyLocale]; ok && len(lt) == 1 {
		return json.Marshal(s)
	}
	return json.Marshal(map[string]string(lt))
}

// For returns the text for a locale: a plain declaration wins, then an exact
// key, then the closest declared language, then English, then the first key
// in sorted order.
func (lt LocaleText) For(locale string) string {
	if len(lt) == 0 {
		return ""
	}
	if s, ok := lt[anyLocale]; ok {
		return s
	}
	if s, ok := lt[locale]; ok {
		return s
	}
	keys := make([]string, 0, len(lt))
	for k := range lt {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if best := MatchLocale(locale, keys); best != "" {
		return lt[best]
	}
	if s, ok := lt["en"]; ok {
		return s
	}
	return lt[keys[0]]
}
