// SPDX-License-Identifier: MPL-2.0

//go:build unix

package runner

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isPTYClosed reports the EIO a pty master returns once the child side closes.
func isPTYClosed(err error) bool {
	return errors.Is(err, unix.EIO)
}
