package utils

import (
	"path/filepath"
	"strings"
)

// SafeFilename turns a project name into something usable in a
// Content-Disposition header and on disk.
func SafeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '"' || r == '\\' || r == '/' || r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || name == "." {
		return "schema"
	}
	return b.String()
}
