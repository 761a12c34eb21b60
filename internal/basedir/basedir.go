// SPDX-License-Identifier: MPL-2.0

// Package basedir locates the Maven project root.
//
// An explicit override is trusted verbatim. Otherwise the resolver walks up
// from the working directory looking for a .mvn directory and falls back to
// the working directory itself.
package basedir

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/invowk/mvnmcp/internal/platform"
)

// MarkerDir is the directory whose presence identifies a project root.
const MarkerDir = ".mvn"

// Resolver resolves and memoizes the base directory. It is safe for
// concurrent use.
type Resolver struct {
	mu       sync.Mutex
	override string
	cached   string
	getwd    func() (string, error)
}

// NewResolver creates a resolver with the given override. An empty override
// enables marker discovery.
func NewResolver(override string) *Resolver {
	return &Resolver{override: override, getwd: os.Getwd}
}

// SetOverride replaces the override. A different value invalidates the cache.
func (r *Resolver) SetOverride(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dir != r.override {
		r.override = dir
		r.cached = ""
	}
}

// Override returns the current override.
func (r *Resolver) Override() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.override
}

// Resolve returns the base directory, computing it on first use.
func (r *Resolver) Resolve() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached, nil
	}
	if r.override != "" {
		r.cached = r.override
		return r.cached, nil
	}

	wd, err := r.getwd()
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}
	r.cached = Find(wd)
	return r.cached, nil
}

// Find walks up from start and returns the first directory containing
// MarkerDir, or start when no ancestor has one.
func Find(start string) string {
	start = filepath.Clean(start)
	for dir := start; ; {
		if platform.IsDir(filepath.Join(dir, MarkerDir)) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
