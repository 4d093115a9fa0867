package fsutil

import "strings"

// IsHidden reports whether a directory entry is hidden by naming convention.
func IsHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
