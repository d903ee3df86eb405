// SPDX-License-Identifier: MPL-2.0

//go:build unix

package runner

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killGroupOnCancel makes cancellation kill the child's whole process group,
// so processes the tool forks die with it. A pty child is already a session
// leader and heads its own group; setpgid would fail for it.
func killGroupOnCancel(cmd *exec.Cmd, pty bool) {
	if !pty {
		if cmd.SysProcAttr == nil {
			cmd.SysProcAttr = &syscall.SysProcAttr{}
		}
		cmd.SysProcAttr.Setpgid = true
	}
	cmd.Cancel = func() error {
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		if errors.Is(err, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}

// interruptedBySignal reports whether the child died from SIGINT, as it does
// when Ctrl-C reaches it before the context is cancelled.
func interruptedBySignal(exitErr *exec.ExitError) bool {
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == unix.SIGINT
}
