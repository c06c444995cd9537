// Package fsutil holds small path helpers for packages that read files
// named by repository state rather than by direct user input (currently
// the exporter).
package fsutil

import (
	"path/filepath"
	"strings"
)

// IsSubPath reports whether target resolves to base itself or to
// somewhere underneath it, after both are made absolute. Used to guard
// against a package name containing ".." segments that would otherwise
// resolve outside the configured package directory.
func IsSubPath(base, target string) (bool, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false, err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return false, err
	}
	if rel == "." {
		return true, nil
	}
	if strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return false, nil
	}
	return true, nil
}
