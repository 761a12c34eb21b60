// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include directory and file operations (MustChdir, MustMkdirAll,
// MustWriteFile), fake executables for subprocess tests (WriteExecutable,
// FakeMavenHome, FakeJavaHome), and a manually advanced clock (FakeClock).
package testutil
