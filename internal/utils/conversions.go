package utils

import "strings"

// Slug lowercases s and joins its words with hyphens.
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// Assign copies the value behind update onto target when update is non-nil.
func Assign[T any](target *T, update *T) {
	if update != nil {
		*target = *update
	}
}
