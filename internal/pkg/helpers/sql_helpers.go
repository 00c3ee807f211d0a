package helpers

import "strings"

// NilIfBlank returns nil for empty or whitespace-only strings and a pointer to the
// trimmed value otherwise. Maps optional form fields onto nullable columns.
func NilIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
