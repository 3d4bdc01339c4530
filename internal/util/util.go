package util

import (
	"os"
	"path/filepath"
	"strings"
)

// WritablePath returns the cleaned WRITABLE_PATH environment variable when it is set.
// It accepts both uppercase and lowercase variants for compatibility with existing conventions.
func WritablePath() string {
	for _, key := range []string{"WRITABLE_PATH", "writable_path"} {
		if value, ok := os.LookupEnv(key); ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return filepath.Clean(trimmed)
			}
		}
	}
	return ""
}

// SanitizeListTitle strips everything but letters and digits from a form
// title so it can name the per-form submissions list.
func SanitizeListTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SubmissionsListName derives the per-form submissions list name from a form
// title, matching how provisioned lists were historically named.
func SubmissionsListName(formTitle string) string {
	return "FormSubmissions_" + SanitizeListTitle(formTitle)
}
