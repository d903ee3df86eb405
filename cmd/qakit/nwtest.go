// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcewann/qakit/internal/nwtest"
	"github.com/mcewann/qakit/internal/runner"
	"github.com/mcewann/qakit/internal/toolkit"
)

// runMonitor streams the tool output through the classifier and prints the
// summary when the tool exits. An interrupted run prints no summary. With a
// json or toml summary the tool output is echoed to stderr so stdout holds
// only the encoded summary.
func (a *App) runMonitor(ctx context.Context, argv []string, format nwtest.Format) error {
	if format == "" {
		format = nwtest.FormatText
	}
	if err := format.Validate(); err != nil {
		return err
	}

	var echo io.Writer = a.stdout
	if format != nwtest.FormatText {
		echo = a.stderr
	}

	classifier := nwtest.NewClassifier(nwtest.WithPIDField(a.Config.NWTest.PIDField))
	res := a.Runner.Stream(ctx, runner.Invocation{
		Argv:   argv,
		Stdin:  a.stdin,
		Stdout: echo,
		Stderr: a.stderr,
		PTY:    a.Config.NWTest.PTY,
	}, func(line string) {
		kind := classifier.Observe(line)
		if kind != nwtest.LineOther {
			a.Logger.Debug("classified", "kind", kind)
		}
	})

	feature, _ := a.Catalog.Lookup(toolkit.FeatureNWTest)
	if res.Interrupted() {
		a.Logger.Debug("interrupted, summary discarded")
		return a.resultError(feature, argv, res)
	}

	if err := a.printSummary(classifier.Summary(), format); err != nil {
		return err
	}
	return a.resultError(feature, argv, res)
}

func (a *App) printSummary(s nwtest.Summary, format nwtest.Format) error {
	if format != nwtest.FormatText {
		return s.Encode(a.stdout, format)
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, a.Styles.Title.Render("nwtest summary"))
	for _, f := range s.Findings() {
		fmt.Fprintln(a.stdout, a.findingStyle(f.Severity).Render(f.Text))
	}
	return nil
}

func (a *App) findingStyle(sev nwtest.Severity) lipgloss.Style {
	switch sev {
	case nwtest.FindingOK:
		return a.Styles.Success
	case nwtest.FindingWarning:
		return a.Styles.Warning
	case nwtest.FindingProblem:
		return a.Styles.Error
	default:
		return a.Styles.Subtitle
	}
}
