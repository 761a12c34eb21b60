// SPDX-License-Identifier: MPL-2.0

// Package engine runs Maven for a project and interprets the outcome.
//
// Each Execute call checks that Java is available, resolves the base
// directory and the toolchain, runs the selected program with the base
// directory as its working directory, captures its output and classifies
// failures with a remediation hint. Calls are serialized: at most one build
// runs per Engine at a time. The process working directory is never changed.
package engine
