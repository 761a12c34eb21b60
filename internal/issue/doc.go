// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. The catalog in this package holds Markdown
// remediation text for the failure classes a build can end in (Java missing,
// Maven missing, build failed, ...) and renders it with glamour.
package issue
