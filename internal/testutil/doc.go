// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover home directory redirection (SetHomeDir), directory and file
// setup (MustChdir, MustMkdirAll, MustWriteFile, MustReadFile) and cleanup
// (MustClose).
package testutil
