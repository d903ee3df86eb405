// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcewann/qakit/internal/deps"
	"github.com/mcewann/qakit/internal/issue"
	"github.com/mcewann/qakit/internal/nwtest"
	"github.com/mcewann/qakit/internal/runner"
	"github.com/mcewann/qakit/internal/toolkit"
	"github.com/mcewann/qakit/internal/tui"
)

// featureRequest is one feature run, from the menu or a subcommand.
type featureRequest struct {
	feature toolkit.Feature
	answers map[string]string
	extra   []string
	// summary selects the nwtest summary encoding for monitor mode.
	summary nwtest.Format
}

// newFeatureCommand creates `qakit <feature>` for f. Prompt values come
// from --set KEY=VALUE; missing required values are asked for when the
// terminal is interactive.
func newFeatureCommand(app *App, f toolkit.Feature) *cobra.Command {
	var (
		sets    []string
		summary string
		ask     bool
	)

	cmd := &cobra.Command{
		Use:   f.ID + " [-- extra args...]",
		Short: f.Summary,
		Long:  f.Title + "." + promptHelp(f),
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, err := app.Catalog.Lookup(f.ID)
			if err != nil {
				return err
			}
			answers, err := parseSets(sets)
			if err != nil {
				return err
			}
			if ask || (missingRequired(feature, answers) && tui.IsInteractive()) {
				if answers, err = app.askMissing(feature, answers); err != nil {
					return err
				}
			}
			return app.runFeature(cmd.Context(), featureRequest{
				feature: feature,
				answers: answers,
				extra:   args,
				summary: nwtest.Format(summary),
			})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "prompt value as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&ask, "ask", false, "prompt for values not given with --set")
	if f.Mode == toolkit.ModeMonitor {
		cmd.Flags().StringVar(&summary, "summary", string(nwtest.FormatText), "summary format: text, json or toml")
	}
	return cmd
}

// runFeature checks the feature's tool, expands its command and runs it.
func (a *App) runFeature(ctx context.Context, req featureRequest) error {
	f := req.feature

	if err := a.Prober.Require(f.Tool()); err != nil {
		return a.reportError(dependencyError(f, err), 1)
	}

	values, err := f.Resolve(req.answers)
	if err != nil {
		var mv *toolkit.MissingValueError
		if errors.As(err, &mv) {
			return issue.NewErrorContext().
				WithOperation("run "+f.ID).
				WithSuggestion(fmt.Sprintf("Pass the value with --set %s=...", mv.Key)).
				WithSuggestion("Or use --ask to be prompted").
				Wrap(err).
				BuildError()
		}
		return err
	}
	argv, err := f.Command(values, req.extra...)
	if err != nil {
		return err
	}

	a.Logger.Debug("running feature", "feature", f.ID, "argv", argv, "mode", f.Mode)

	if f.Mode == toolkit.ModeMonitor {
		return a.runMonitor(ctx, argv, req.summary)
	}

	res := a.Runner.Run(ctx, runner.Invocation{
		Argv:   argv,
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
	})
	return a.resultError(f, argv, res)
}

// resultError converts a runner result into the command's error.
func (a *App) resultError(f toolkit.Feature, argv []string, res *runner.Result) error {
	switch {
	case res.Error != nil && errors.Is(res.Error, exec.ErrNotFound):
		return a.reportError(dependencyError(f, res.Error), 1)
	case res.Interrupted():
		return &ExitError{Code: int(res.ExitCode)}
	case res.Error != nil:
		return a.reportError(issue.NewErrorContext().
			WithOperation("run "+f.ID).
			WithResource(argv[0]).
			WithSuggestion("Run with --verbose to see the full command line").
			WithIssue(issue.CommandFailedId).
			Wrap(res.Error).
			Build(), int(res.ExitCode))
	case !res.Success():
		a.Logger.Debug("tool failed", "program", argv[0], "exit", res.ExitCode)
		return &ExitError{Code: int(res.ExitCode)}
	}
	return nil
}

// askMissing prompts for the values not already answered.
func (a *App) askMissing(f toolkit.Feature, answers map[string]string) (map[string]string, error) {
	var pending []toolkit.Prompt
	for _, p := range f.Prompts {
		if strings.TrimSpace(answers[p.Key]) == "" {
			pending = append(pending, p)
		}
	}
	asked, err := a.Prompter.Ask(pending)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]string, len(answers)+len(asked))
	for k, v := range answers {
		merged[k] = v
	}
	for k, v := range asked {
		merged[k] = v
	}
	return merged, nil
}

func dependencyError(f toolkit.Feature, cause error) error {
	return issue.NewErrorContext().
		WithOperation(fmt.Sprintf("execute '%s'", f.Title)).
		WithResource(f.Tool()).
		WithSuggestion("Dependencies not met: install " + f.Tool() + " and make sure it is on PATH").
		WithSuggestion("Run 'qakit deps' to see every tool qakit uses").
		WithIssue(issue.ToolNotFoundId).
		Wrap(cause).
		Build()
}

func missingRequired(f toolkit.Feature, answers map[string]string) bool {
	return slices.ContainsFunc(f.Prompts, func(p toolkit.Prompt) bool {
		return !p.Optional && p.Default == "" && strings.TrimSpace(answers[p.Key]) == ""
	})
}

// parseSets turns KEY=VALUE flags into answers. Keys are upper-cased.
func parseSets(sets []string) (map[string]string, error) {
	answers := make(map[string]string, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected KEY=VALUE", s)
		}
		answers[key] = value
	}
	return answers, nil
}

func promptHelp(f toolkit.Feature) string {
	if len(f.Prompts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nValues (--set KEY=VALUE):\n")
	for _, p := range f.Prompts {
		fmt.Fprintf(&b, "  %-9s %s", p.Key, p.Title)
		if p.Default != "" {
			fmt.Fprintf(&b, " (default %s)", p.Default)
		} else if p.Optional {
			b.WriteString(" (optional)")
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nCommand: " + f.Template)
	return b.String()
}

// probeStatus returns the availability of f's tool in report.
func probeStatus(report deps.Report, f toolkit.Feature) bool {
	for _, s := range report.Statuses {
		if s.Tool == f.Tool() {
			return s.Available()
		}
	}
	return false
}
