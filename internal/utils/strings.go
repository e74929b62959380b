package utils

import (
	"sort"
	"strings"

	"github.com/PolarWolf314/tunnelrelay/internal/ui"
)

// FormatList formats items as an indented bullet list, one per line.
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("    - ")
		b.WriteString(ui.Highlight.Sprint(item))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatKeyValues formats a map as indented "key = value" lines sorted by key.
func FormatKeyValues(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString("      ")
		b.WriteString(key)
		b.WriteString(" = ")
		b.WriteString(values[key])
		b.WriteString("\n")
	}
	return b.String()
}
