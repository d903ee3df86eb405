// SPDX-License-Identifier: MPL-2.0

//go:build windows

package selfupdate

// Restart always fails on Windows; the user starts the new binary themselves.
func Restart(string) error {
	return ErrRestartUnsupported
}
