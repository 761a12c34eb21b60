// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsWindows reports whether the current host is Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}

// MavenBinary returns the platform-specific name of the native Maven launcher.
func MavenBinary() string {
	return MavenBinaryFor(runtime.GOOS)
}

// MavenBinaryFor returns the native Maven launcher name for goos.
func MavenBinaryFor(goos string) string {
	if goos == Windows {
		return "mvn.cmd"
	}
	return "mvn"
}

// JavaBinary returns the platform-specific name of the Java launcher.
func JavaBinary() string {
	return JavaBinaryFor(runtime.GOOS)
}

// JavaBinaryFor returns the Java launcher name for goos.
func JavaBinaryFor(goos string) string {
	if goos == Windows {
		return "java.exe"
	}
	return "java"
}
