// SPDX-License-Identifier: MPL-2.0

package deps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mcewann/qakit/internal/runner"
)

// DefaultTimeout bounds each version probe.
const DefaultTimeout = 3 * time.Second

// ErrToolNotFound is the sentinel wrapped by ToolNotFoundError.
var ErrToolNotFound = errors.New("tool not found")

// versionFlags lists tools that do not accept --version.
var versionFlags = map[string]string{
	"ffmpeg": "-version",
	"ip":     "-V",
	"ping":   "-V",
}

type (
	// Status is the probe result for one tool.
	Status struct {
		// Tool is the program name.
		Tool string
		// Path is the resolved executable, empty when missing.
		Path string
		// Version is the first line of the tool's version output, if any.
		Version string
	}

	// Report is the outcome of checking a set of tools, in request order.
	Report struct {
		Statuses []Status
	}

	// ToolNotFoundError reports a program missing from PATH.
	ToolNotFoundError struct {
		Tool string
	}

	// VersionFunc runs a tool to obtain its version output.
	VersionFunc func(ctx context.Context, path string, args ...string) (string, error)

	// Prober checks tools on the host.
	Prober struct {
		lookPath func(string) (string, error)
		version  VersionFunc
		timeout  time.Duration
		logger   *log.Logger
	}

	// Option configures a Prober.
	Option func(*Prober)
)

// Error implements error.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s is not installed or not in PATH", e.Tool)
}

// Unwrap returns ErrToolNotFound.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// Available reports whether the tool was found.
func (s Status) Available() bool { return s.Path != "" }

// Missing returns the names of tools that were not found.
func (r Report) Missing() []string {
	var missing []string
	for _, s := range r.Statuses {
		if !s.Available() {
			missing = append(missing, s.Tool)
		}
	}
	return missing
}

// OK reports whether every tool was found.
func (r Report) OK() bool { return len(r.Missing()) == 0 }

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Prober) { p.lookPath = fn }
}

// WithVersionFunc replaces the function used to run version probes.
func WithVersionFunc(fn VersionFunc) Option {
	return func(p *Prober) { p.version = fn }
}

// WithTimeout sets the per-tool version probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) { p.timeout = d }
}

// WithLogger sets the logger for probe diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(p *Prober) { p.logger = l }
}

// NewProber creates a Prober. Version probes run through r.
func NewProber(r *runner.Runner, opts ...Option) *Prober {
	p := &Prober{
		lookPath: exec.LookPath,
		version:  runVersion(r),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	return p
}

// Require returns a ToolNotFoundError when tool is not on PATH.
func (p *Prober) Require(tool string) error {
	if _, err := p.lookPath(tool); err != nil {
		p.logger.Debug("lookup failed", "tool", tool, "err", err)
		return &ToolNotFoundError{Tool: tool}
	}
	return nil
}

// Check probes tools concurrently and returns their statuses in the order
// given. A failed version probe leaves Version empty.
func (p *Prober) Check(ctx context.Context, tools []string) Report {
	statuses := make([]Status, len(tools))

	var wg sync.WaitGroup
	for i, tool := range tools {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = p.probe(ctx, tool)
		}()
	}
	wg.Wait()

	return Report{Statuses: statuses}
}

func (p *Prober) probe(ctx context.Context, tool string) Status {
	st := Status{Tool: tool}

	path, err := p.lookPath(tool)
	if err != nil {
		p.logger.Debug("missing", "tool", tool)
		return st
	}
	st.Path = path

	flag, ok := versionFlags[tool]
	if !ok {
		flag = "--version"
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.version(probeCtx, path, flag)
	if err != nil {
		p.logger.Debug("version probe failed", "tool", tool, "err", err)
	}
	st.Version = firstLine(out)
	return st
}

// runVersion returns a VersionFunc that runs the tool through r and
// captures stdout and stderr together.
func runVersion(r *runner.Runner) VersionFunc {
	return func(ctx context.Context, path string, args ...string) (string, error) {
		var buf bytes.Buffer
		res := r.Run(ctx, runner.Invocation{
			Argv:   append([]string{path}, args...),
			Stdout: &buf,
			Stderr: &buf,
		})
		if res.Error != nil {
			return buf.String(), res.Error
		}
		if !res.Success() {
			return buf.String(), fmt.Errorf("exit code %s", res.ExitCode)
		}
		return buf.String(), nil
	}
}

func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
