// Package i18n holds the chat prompt strings.
package i18n

import (
	"fmt"
	"strings"
)

const fallbackLocale = "en"

// T renders key in locale. Missing translations fall back to English, then
// to the key itself, so a lookup never fails.
func T(locale, key string, args ...any) string {
	msg, ok := catalog[strings.ToLower(locale)][key]
	if !ok {
		msg, ok = catalog[fallbackLocale][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Supported reports whether locale has its own table.
func Supported(locale string) bool {
	_, ok := catalog[strings.ToLower(locale)]
	return ok
}

var catalog = map[string]map[string]string{
	"en": english,
	"es": spanish,
}
