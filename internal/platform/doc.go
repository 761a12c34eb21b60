// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It centralizes the executable names that differ between Windows and
// Unix-like hosts (mvn vs mvn.cmd, java vs java.exe) and the executable
// search used by the toolchain resolver. Searches run against an explicit
// PATH snapshot instead of the ambient process environment so that callers
// can resolve against the configuration they were constructed with.
package platform
