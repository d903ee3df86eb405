// SPDX-License-Identifier: MPL-2.0

// Package runner executes external tool invocations for qakit.
//
// Run passes the child's output straight through to the caller's writers.
// Stream reads standard output line by line, echoes every line verbatim and
// hands it to a LineHandler, so callers can observe tool output while the
// user still sees all of it. A non-zero exit status is a normal Result; only
// failures to start or read the process are reported as errors.
package runner
