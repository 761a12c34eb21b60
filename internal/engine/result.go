// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"

	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/toolchain"
)

// ErrStartFailed indicates the build process could not be started at all.
var ErrStartFailed = errors.New("failed to start build process")

type (
	// Result is the outcome of one Execute call. It is not modified after
	// Execute returns.
	Result struct {
		// ExecutionID uniquely identifies the call in logs.
		ExecutionID string
		// BaseDir is the working directory the build ran in.
		BaseDir string
		// Selection is the toolchain that was used. Zero when Java was missing.
		Selection toolchain.Selection
		// Argv is the full command line, program first.
		Argv []string
		// ExitCode is the process exit code, or 1 when it never ran.
		ExitCode int
		// Stdout and Stderr hold the captured output.
		Stdout string
		Stderr string
		// Err is set when the build could not run (Java missing, spawn failure).
		Err error
		// Hint names the catalog entry explaining a failure. Zero on success.
		Hint issue.Id
	}

	// StartError reports a build process that could not be created.
	// It wraps ErrStartFailed and the underlying cause.
	StartError struct {
		Program string
		Kind    toolchain.Kind
		Cause   error
	}
)

// Success reports whether the build ran and exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s (%s): %v", e.Program, e.Kind, e.Cause)
}

func (e *StartError) Unwrap() []error {
	return []error{ErrStartFailed, e.Cause}
}
