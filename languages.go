package gotdoc

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ParseLanguage parses a locale code such as "hu", "es_ES" or "pt-BR".
// Plain language names ("Hungarian") do not parse and return false.
func ParseLanguage(lang string) (language.Tag, bool) {
	code := NormalizeLocale(strings.TrimSpace(lang))
	if code == "" {
		return language.Und, false
	}
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}

// LanguageName returns the English display name of a language for prompts.
// Codes are resolved through the CLDR tables; anything else is assumed to
// already be a name and is returned trimmed.
func LanguageName(lang string) string {
	trimmed := strings.TrimSpace(lang)
	tag, ok := ParseLanguage(trimmed)
	if !ok {
		return trimmed
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return trimmed
}

// SameLanguage reports whether two language codes or names denote the same
// language. Codes must match in full, script and region included, so
// "pt-PT" and "pt-BR" or "zh-Hans" and "zh-Hant" are different languages.
// A name matches a code only when the code's display name is that name.
func SameLanguage(a, b string) bool {
	ta, okA := ParseLanguage(a)
	tb, okB := ParseLanguage(b)
	if okA && okB {
		return ta == tb
	}
	return strings.EqualFold(LanguageName(a), LanguageName(b))
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(lang string) string {
	if tag, ok := ParseLanguage(lang); ok {
		base, _ := tag.Base()
		if RTLLanguages[base.String()] {
			return "rtl"
		}
		return "ltr"
	}
	for code := range RTLLanguages {
		if strings.EqualFold(LanguageName(code), strings.TrimSpace(lang)) {
			return "rtl"
		}
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(lang string) bool {
	return GetDirection(lang) == "rtl"
}

// NormalizeLocale converts a locale code to BCP 47 separators (e.g., "es_ES" → "es-ES").
func NormalizeLocale(lang string) string {
	return strings.ReplaceAll(lang, "_", "-")
}

// LanguageTag returns the BCP 47 tag for lang, or "" when lang is not a code.
func LanguageTag(lang string) string {
	tag, ok := ParseLanguage(lang)
	if !ok {
		return ""
	}
	return tag.String()
}
