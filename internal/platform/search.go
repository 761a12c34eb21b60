// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// ErrNotFound is returned by Searcher implementations when no executable
// with the requested name exists on the search path.
var ErrNotFound = errors.New("executable not found")

type (
	// Searcher looks up executables by name.
	Searcher interface {
		LookPath(name string) (string, error)
	}

	// PathSearcher searches a captured PATH (and PATHEXT on Windows) using the
	// same rules as the mvdan/sh interpreter.
	PathSearcher struct {
		// Path is the list of directories to search, in PATH syntax.
		Path string
		// PathExt is the Windows executable extension list. Ignored elsewhere.
		PathExt string
		// Dir resolves relative PATH entries. Empty means the current directory.
		Dir string
	}

	// NotFoundError reports a failed executable lookup.
	// It wraps ErrNotFound for errors.Is() compatibility.
	NotFoundError struct {
		Name  string
		Cause error
	}
)

// NewPathSearcher creates a PathSearcher over the given PATH and PATHEXT values.
func NewPathSearcher(path, pathExt string) *PathSearcher {
	return &PathSearcher{Path: path, PathExt: pathExt}
}

// LookPath returns the absolute path of the first executable called name.
func (s *PathSearcher) LookPath(name string) (string, error) {
	// An empty PATH would otherwise search the current directory.
	if s.Path == "" && !strings.ContainsRune(name, os.PathSeparator) {
		return "", &NotFoundError{Name: name}
	}

	dir := s.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve search directory: %w", err)
		}
		dir = wd
	}

	pairs := []string{"PATH=" + s.Path}
	if s.PathExt != "" {
		pairs = append(pairs, "PATHEXT="+s.PathExt)
	}

	found, err := interp.LookPathDir(dir, expand.ListEnviron(pairs...), name)
	if err != nil {
		return "", &NotFoundError{Name: name, Cause: err}
	}
	return found, nil
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Name, e.Cause)
	}
	return e.Name + ": " + ErrNotFound.Error()
}

// Unwrap returns ErrNotFound so callers can use errors.Is.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsFile reports whether path exists and is not a directory.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
