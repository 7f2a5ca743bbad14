package helpers

import "strings"

// SanitizeText escapes "<" and trims surrounding whitespace. It is
// idempotent, so already sanitized text passes through unchanged.
func SanitizeText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "<", "&lt;"))
}
