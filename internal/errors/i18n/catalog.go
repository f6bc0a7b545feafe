// Package i18n holds the localized message catalogs for domain error codes.
package i18n

import (
	"strings"
	"text/template"
)

// Code mirrors the machine-readable error code as a plain string. The codes
// are duplicated from internal/errors to avoid an import cycle.
type Code = string

// Catalog maps error codes to localized message templates for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the catalog's locale tag.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for a code, substituting {{.Key}} metadata
// placeholders. Unknown codes fall back to the UNKNOWN message.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		msg = c.messages[CodeUnknown]
	}
	if len(metadata) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}

	tmpl, err := template.New("msg").Parse(msg)
	if err != nil {
		return msg
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, metadata); err != nil {
		return msg
	}
	return out.String()
}

// GetCatalog returns the catalog for a locale, defaulting to pt-BR.
func GetCatalog(locale string) *Catalog {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "en-us", "en":
		return enUSCatalog
	default:
		return ptBRCatalog
	}
}
