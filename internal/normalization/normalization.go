package normalization

import "strings"

// ParseInputString trims surrounding whitespace from user-provided input.
func ParseInputString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail lowercases and trims an email so the shared identity
// namespace is case-insensitive across all actor stores.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
