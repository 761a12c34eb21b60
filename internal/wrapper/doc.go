// SPDX-License-Identifier: MPL-2.0

// Package wrapper provisions the Maven wrapper launcher under
// <base>/.mvn/wrapper.
//
// The properties file is written once with pinned URLs and never rewritten.
// The launcher jar is downloaded into a temporary file in the same directory,
// optionally verified against a SHA-256 checksum, and renamed into place so a
// failed download never leaves a partial jar behind.
package wrapper
