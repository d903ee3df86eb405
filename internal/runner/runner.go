// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
)

// waitDelay bounds how long Wait keeps copying output after the child exits
// or is killed, for descendants that escaped its process group.
const waitDelay = 2 * time.Second

var (
	// ErrEmptyCommand is returned when an Invocation has no argv.
	ErrEmptyCommand = errors.New("empty command")
	// ErrInterrupted is wrapped by the Result error of a cancelled run or of a
	// child killed by SIGINT.
	ErrInterrupted = errors.New("command interrupted")
)

type (
	// Invocation describes one external tool run.
	Invocation struct {
		// Argv is the program followed by its arguments. Argv[0] is resolved
		// against PATH.
		Argv []string
		// Dir is the working directory (empty for the current one).
		Dir string
		// Env holds extra KEY=VALUE pairs appended to the inherited environment.
		Env []string
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// PTY attaches the child's stdout to a pseudo-terminal in Stream, so
		// tools that block-buffer pipes still emit lines as they happen.
		PTY bool
	}

	// LineHandler receives each stdout line, terminator included.
	LineHandler func(line string)

	// Runner starts external tools.
	Runner struct {
		logger *log.Logger
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// WithLogger sets the logger used for debug traces of each invocation.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Run executes inv with its output passed straight through.
func (r *Runner) Run(ctx context.Context, inv Invocation) *Result {
	cmd, err := r.command(ctx, inv)
	if err != nil {
		return NewErrorResult(1, err)
	}
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	r.logger.Debug("running", "argv", inv.Argv, "dir", inv.Dir)
	res := resultOf(ctx, cmd.Run())
	r.logger.Debug("finished", "program", inv.Argv[0], "exit", res.ExitCode, "err", res.Error)
	return res
}

// Stream executes inv, copying each stdout line verbatim to inv.Stdout in
// arrival order and then passing it to handle. Stderr passes through.
// Cancelling ctx kills the child and everything it forked; the Result then
// carries ExitInterrupted and an error wrapping ErrInterrupted and the context
// error.
func (r *Runner) Stream(ctx context.Context, inv Invocation, handle LineHandler) *Result {
	cmd, err := r.command(ctx, inv)
	if err != nil {
		return NewErrorResult(1, err)
	}
	cmd.Stdin = inv.Stdin
	cmd.Stderr = inv.Stderr
	killGroupOnCancel(cmd, inv.PTY)

	var out io.ReadCloser
	if inv.PTY {
		tty, ptyErr := pty.Start(cmd)
		if ptyErr != nil {
			return resultOf(ctx, fmt.Errorf("starting with pty: %w", ptyErr))
		}
		out = tty
	} else {
		pipe, pipeErr := cmd.StdoutPipe()
		if pipeErr != nil {
			return NewErrorResult(1, fmt.Errorf("creating stdout pipe: %w", pipeErr))
		}
		if startErr := cmd.Start(); startErr != nil {
			return resultOf(ctx, startErr)
		}
		out = pipe
	}

	r.logger.Debug("streaming", "argv", inv.Argv, "pty", inv.PTY)

	// Unblock the read on cancellation even if a descendant still holds the
	// write side open.
	stop := context.AfterFunc(ctx, func() { _ = out.Close() })
	readErr := pump(out, inv.Stdout, handle)
	stop()
	if readErr != nil {
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()
	if inv.PTY {
		// The pty master stays open after the child exits.
		_ = out.Close()
	}

	if readErr != nil && ctx.Err() == nil {
		return NewErrorResult(1, fmt.Errorf("reading tool output: %w", readErr))
	}
	res := resultOf(ctx, waitErr)
	r.logger.Debug("finished", "program", inv.Argv[0], "exit", res.ExitCode, "err", res.Error)
	return res
}

func (r *Runner) command(ctx context.Context, inv Invocation) (*exec.Cmd, error) {
	if len(inv.Argv) == 0 || inv.Argv[0] == "" {
		return nil, ErrEmptyCommand
	}
	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = waitDelay
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	return cmd, nil
}

// pump copies r to sink line by line, preserving terminators, and calls
// handle after each line is written.
func pump(r io.Reader, sink io.Writer, handle LineHandler) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if sink != nil {
				if _, werr := io.WriteString(sink, line); werr != nil {
					return werr
				}
			}
			if handle != nil {
				handle(line)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || isPTYClosed(err) {
				return nil
			}
			return err
		}
	}
}

// resultOf maps the error from starting or waiting on a command to a Result.
func resultOf(ctx context.Context, err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return NewErrorResult(ExitInterrupted, fmt.Errorf("%w: %w", ErrInterrupted, ctxErr))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if interruptedBySignal(exitErr) {
			return NewErrorResult(ExitInterrupted, fmt.Errorf("%w: %s", ErrInterrupted, exitErr))
		}
		code := ExitCode(exitErr.ExitCode())
		if code.Validate() != nil {
			// Killed by a signal.
			code = 1
		}
		return NewExitCodeResult(code)
	}
	return NewErrorResult(1, fmt.Errorf("failed to execute command: %w", err))
}
