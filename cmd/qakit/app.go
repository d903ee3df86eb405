// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mcewann/qakit/internal/config"
	"github.com/mcewann/qakit/internal/deps"
	"github.com/mcewann/qakit/internal/issue"
	"github.com/mcewann/qakit/internal/runner"
	"github.com/mcewann/qakit/internal/toolkit"
	"github.com/mcewann/qakit/internal/tui"
)

type (
	// App wires the CLI services. It is the composition root for the
	// command handlers, filled in once per invocation by load.
	App struct {
		Config     *config.Config
		ConfigPath string
		Logger     *log.Logger
		Runner     *runner.Runner
		Catalog    *toolkit.Catalog
		Prober     *deps.Prober
		Prompter   Prompter
		Styles     Styles
		Verbose    bool

		provider config.Provider
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
		probe    []deps.Option
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Prompter Prompter
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
		// ProbeOptions are passed to the dependency prober.
		ProbeOptions []deps.Option
	}

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		verbose    bool
		configPath string
		color      string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(d Dependencies) *App {
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Config == nil {
		d.Config = config.NewProvider()
	}

	return &App{
		Config:   config.DefaultConfig(),
		Prompter: d.Prompter,
		Styles:   NewStyles(d.Stdout, config.ColorAuto),
		Logger:   log.New(io.Discard),
		provider: d.Config,
		stdin:    d.Stdin,
		stdout:   d.Stdout,
		stderr:   d.Stderr,
		probe:    d.ProbeOptions,
	}
}

// load reads the configuration and builds the services from it. A broken
// config file is reported as a warning and the defaults are used, so the
// config subcommands stay usable to repair it.
func (a *App) load(ctx context.Context, flags globalFlags) error {
	cfg, path, err := a.provider.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		a.Styles = NewStyles(a.stdout, config.ColorAuto)
		fmt.Fprintln(a.stderr, a.Styles.Warning.Render("Warning: ")+a.formatError(err))
		cfg = config.DefaultConfig()
	}
	a.Config = cfg
	a.ConfigPath = path

	if flags.color != "" {
		mode := config.ColorMode(flags.color)
		if ok, errs := mode.IsValid(); !ok {
			return errors.Join(errs...)
		}
		a.Config.UI.Color = mode
	}
	a.Verbose = flags.verbose || a.Config.UI.Verbose
	a.Styles = NewStyles(a.stdout, a.Config.UI.Color)

	level := log.WarnLevel
	if a.Verbose {
		level = log.DebugLevel
	}
	a.Logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix: "qakit",
		Level:  level,
	})

	a.Runner = runner.New(runner.WithLogger(a.Logger.WithPrefix("runner")))
	a.Prober = deps.NewProber(a.Runner, append([]deps.Option{deps.WithLogger(a.Logger.WithPrefix("deps"))}, a.probe...)...)

	catalog, err := toolkit.NewCatalog(a.Config.Commands)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("load command templates").
			WithResource(path).
			WithSuggestion("Check the keys under 'commands' in the config file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	a.Catalog = catalog

	if a.Prompter == nil {
		tcfg := tui.DefaultConfig()
		tcfg.Theme = tui.Theme(a.Config.UI.Theme)
		tcfg.Accessible = tcfg.Accessible || a.Config.UI.Accessible
		tcfg.Input = a.stdin
		a.Prompter = &huhPrompter{cfg: tcfg}
	}
	return nil
}

// formatError renders err for the user. ActionableErrors show their
// suggestions; in verbose mode the error chain and the matching issue guide
// follow.
func (a *App) formatError(err error) string {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return err.Error()
	}
	out := ae.Format(a.Verbose)
	if a.Verbose && ae.IssueID != 0 {
		if guide := issue.Get(ae.IssueID); guide != nil {
			if rendered, renderErr := guide.Render(a.Styles.MarkdownStyle()); renderErr == nil {
				out += "\n" + rendered
			}
		}
	}
	return out
}

// reportError prints err to stderr and returns an already-reported
// ExitError with code.
func (a *App) reportError(err error, code int) error {
	fmt.Fprintln(a.stderr, a.Styles.Error.Render("Error: ")+a.formatError(err))
	return &ExitError{Code: code}
}
