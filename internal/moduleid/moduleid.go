// Package moduleid canonicalizes absolute file paths into the stable,
// project-root-relative strings used as module registry keys throughout
// the rest of the bundler.
package moduleid

import (
	"path/filepath"
	"strings"
)

// ID is a project-root-relative, forward-slash-normalized path. Files
// outside the project root keep their absolute, slash-normalized form.
type ID string

// From canonicalizes an absolute file path relative to root.
func From(root string, absPath string) ID {
	rel, err := filepath.Rel(root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ID(filepath.ToSlash(absPath))
	}
	return ID(filepath.ToSlash(rel))
}
