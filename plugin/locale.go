package plugin

import "golang.org/x/text/language"

// MatchLocale picks the best supported locale for a requested tag, e.g.
// "zh-CN" matches a declared "zh". Returns "" when nothing matches.
func MatchLocale(requested string, supported []string) string {
	if requested == "" || len(supported) == 0 {
		return ""
	}
	tags := make([]language.Tag, 0, len(supported))
	names := make([]string, 0, len(supported))
	for _, s := range supported {
		t, err := language.Parse(s)
		if err != nil {
			continue
		}
		tags = append(tags, t)
		names = append(names, s)
	}
	if len(tags) == 0 {
		return ""
	}
	want, err := language.Parse(requested)
	if err != nil {
		return ""
	}
	_, i, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return ""
	}
	return names[i]
}

// ResolveLocale picks the locale a plugin should answer in for a requested
// tag: the closest declared locale, else the manifest default, else English
// when declared, else the first declared locale.
func (m *Manifest) ResolveLocale(requested string) string {
	var locales []string
	var def string
	if m.I18N != nil {
		locales = m.I18N.Locales
		def = m.I18N.DefaultLocale
	}
	if best := MatchLocale(requested, locales); best != "" {
		return best
	}
	if def != "" {
		return def
	}
	for _, loc := range locales {
		if loc == "en" {
			return "en"
		}
	}
	if len(locales) > 0 {
		return locales[0]
	}
	if requested != "" {
		return requested
	}
	return "en"
}
