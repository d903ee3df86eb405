// SPDX-License-Identifier: MPL-2.0

package runner

import "errors"

// Result is the outcome of one invocation.
type Result struct {
	// ExitCode is the child's exit status, or a synthetic code when Error is set.
	ExitCode ExitCode
	// Error reports a failure to run the tool, as opposed to the tool failing.
	Error error
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result for a tool that ran and exited non-zero.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// Success reports whether the tool ran and exited zero.
func (r *Result) Success() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

// Interrupted reports whether the run was cancelled or the child was killed by
// SIGINT.
func (r *Result) Interrupted() bool {
	return errors.Is(r.Error, ErrInterrupted)
}
