// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for mvnmcp.
//
// The root command runs Maven builds locally (compile, test, or raw Maven
// arguments). The serve command exposes the same builds over the Model
// Context Protocol, on stdio or over SSH.
package cmd
