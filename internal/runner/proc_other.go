// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package runner

import "os/exec"

func killGroupOnCancel(*exec.Cmd, bool) {}

func interruptedBySignal(*exec.ExitError) bool { return false }
