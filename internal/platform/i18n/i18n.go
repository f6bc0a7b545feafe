// Package i18n defines the locales the service speaks and matches incoming
// language preferences against them.
package i18n

import "golang.org/x/text/language"

// Locale identifies one supported locale by its BCP 47 tag.
type Locale string

const (
	// LocalePtBR is Brazilian Portuguese, the default locale.
	LocalePtBR Locale = "pt-BR"
	// LocaleEnUS is American English.
	LocaleEnUS Locale = "en-US"
)

var supported = []language.Tag{
	language.MustParse(string(LocalePtBR)),
	language.MustParse(string(LocaleEnUS)),
}

var matcher = language.NewMatcher(supported)

// SupportedTags returns the supported language tags in preference order.
func SupportedTags() []language.Tag {
	tags := make([]language.Tag, len(supported))
	copy(tags, supported)
	return tags
}

// DefaultTag returns the default language tag.
func DefaultTag() language.Tag {
	return supported[0]
}

// ParseTag parses a single tag value and reports whether it is supported.
func ParseTag(value string) (language.Tag, bool) {
	tag, err := language.Parse(value)
	if err != nil {
		return DefaultTag(), false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultTag(), false
	}
	return supported[index], true
}

// MatchTags picks the best supported locale for an Accept-Language chain.
func MatchTags(preferred []language.Tag) language.Tag {
	_, index, confidence := matcher.Match(preferred...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supported[index]
}

// MatchLocale resolves an Accept-Language header chain to a Locale.
func MatchLocale(preferred []language.Tag) Locale {
	return Locale(MatchTags(preferred).String())
}
