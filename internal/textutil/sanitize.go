// Package textutil holds small text helpers shared across the pipeline.
package textutil

import "strings"

// SanitizeFileName converts a portal link label into a filesystem-safe name.
// Letters, digits, dots, dashes, and underscores are kept, spaces become
// underscores, everything else is dropped. The result is trimmed of leading
// and trailing separators and may be empty.
func SanitizeFileName(label string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(label))
	return strings.Trim(cleaned, "._")
}
