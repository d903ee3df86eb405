// SPDX-License-Identifier: MPL-2.0

// Package issue provides the user-facing error types of qakit.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Issue is a catalog of longer Markdown guides, rendered
// with glamour, that the CLI prints for well-known failures such as a
// missing tool or an unreadable config file.
package issue
