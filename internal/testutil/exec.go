// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SkipOnWindows skips tests that rely on POSIX shell scripts as fake executables.
func SkipOnWindows(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test that uses POSIX shell scripts on Windows")
	}
}

// WriteExecutable writes a /bin/sh script named name into dir and marks it
// executable. It returns the script path.
func WriteExecutable(t testing.TB, dir, name, body string) string {
	t.Helper()
	MustMkdirAll(t, dir, 0o755)
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write executable %s: %v", path, err)
	}
	return path
}

// FakeMavenHome creates <root>/bin/mvn with the given script body and returns root.
func FakeMavenHome(t testing.TB, root, body string) string {
	t.Helper()
	WriteExecutable(t, filepath.Join(root, "bin"), "mvn", body)
	return root
}

// FakeJavaHome creates <root>/bin/java with the given script body and returns root.
func FakeJavaHome(t testing.TB, root, body string) string {
	t.Helper()
	WriteExecutable(t, filepath.Join(root, "bin"), "java", body)
	return root
}

// EchoArgsScript is a script body that prints each argument on its own line.
const EchoArgsScript = `for arg in "$@"; do echo "$arg"; done`
