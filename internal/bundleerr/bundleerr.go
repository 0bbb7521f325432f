// Package bundleerr defines the fatal error kinds from spec.md §7. Every
// kind aborts the compilation; none are retried.
package bundleerr

import "fmt"

// Kind is one of the six fatal error categories.
type Kind string

const (
	Read    Kind = "read"
	Parse   Kind = "parse"
	Resolve Kind = "resolve"
	Lower   Kind = "lower"
	Emit    Kind = "emit"
	Write   Kind = "write"
)

// Error wraps an underlying error with the module id/path it occurred on
// and its fatal kind, printed per spec.md §7 as "<kind>: <path>: <detail>".
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a bundleerr.Error for the given kind, path, and cause.
func New(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Err: cause}
}
