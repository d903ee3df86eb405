// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package selfupdate

import (
	"os"
	"syscall"
)

// Restart replaces the current process with the binary at exe, keeping the
// arguments and environment.
func Restart(exe string) error {
	return syscall.Exec(exe, os.Args, os.Environ())
}
