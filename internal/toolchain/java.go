// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/invowk/mvnmcp/internal/platform"
)

// ErrJavaNotFound is returned when no Java runtime can be located.
var ErrJavaNotFound = errors.New("java runtime not found")

// JavaNotFoundError reports where Java was looked for.
// It wraps ErrJavaNotFound for errors.Is() compatibility.
type JavaNotFoundError struct {
	// JavaHome is the configured JAVA_HOME, possibly empty.
	JavaHome string
	// Cause is the search path failure.
	Cause error
}

func (e *JavaNotFoundError) Error() string {
	if e.JavaHome != "" {
		return fmt.Sprintf("Java not found: JAVA_HOME=%s has no bin/%s and %s is not on PATH",
			e.JavaHome, platform.JavaBinary(), platform.JavaBinary())
	}
	return fmt.Sprintf("Java not found: JAVA_HOME is not set and %s is not on PATH", platform.JavaBinary())
}

func (e *JavaNotFoundError) Unwrap() error { return ErrJavaNotFound }

// FindJava returns the Java executable: JAVA_HOME/bin/java when it exists,
// otherwise java from the search path.
func (r *Resolver) FindJava() (string, error) {
	home := r.cfg.JavaHome
	if home != "" {
		exe := filepath.Join(home, "bin", platform.JavaBinary())
		if platform.IsFile(exe) {
			return exe, nil
		}
		r.logger.Warn("JAVA_HOME does not contain a Java executable, searching PATH", "java_home", home, "expected", exe)
	}

	exe, err := r.searcher.LookPath(platform.JavaBinary())
	if err != nil {
		return "", &JavaNotFoundError{JavaHome: home, Cause: err}
	}
	return exe, nil
}
