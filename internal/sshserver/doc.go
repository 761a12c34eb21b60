// SPDX-License-Identifier: MPL-2.0

// Package sshserver serves MCP sessions over SSH using the Wish library.
//
// Each SSH session that does not request a command is bridged to one MCP
// stdio session. Clients authenticate with a token passed as the password;
// public keys are rejected.
package sshserver
