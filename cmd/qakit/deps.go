// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mcewann/qakit/internal/deps"
	"github.com/mcewann/qakit/internal/toolkit"
)

// newDepsCommand creates `qakit deps`, which exits 1 when a tool is missing.
func newDepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools used by each feature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeps(cmd.Context(), app)
		},
	}
}

func runDeps(ctx context.Context, app *App) error {
	report := app.Prober.Check(ctx, app.Catalog.Tools())
	fmt.Fprintln(app.stdout, app.depsTable(report, app.Catalog.Features()))

	if missing := report.Missing(); len(missing) > 0 {
		fmt.Fprintln(app.stdout, app.Styles.Warning.Render("Missing: "+strings.Join(missing, ", ")))
		return &ExitError{Code: 1}
	}
	fmt.Fprintln(app.stdout, app.Styles.Success.Render("All dependencies are installed."))
	return nil
}

// depsTable renders one row per tool with the features that use it.
func (a *App) depsTable(report deps.Report, features []toolkit.Feature) string {
	header := a.Styles.Title
	rows := make([][]string, 0, len(report.Statuses))
	for _, s := range report.Statuses {
		var users []string
		for _, f := range features {
			if f.Tool() == s.Tool {
				users = append(users, f.ID)
			}
		}
		status := "missing"
		if s.Available() {
			status = "ok"
		}
		rows = append(rows, []string{s.Tool, status, strings.Join(users, ", "), s.Version})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(a.Styles.Subtitle).
		Headers("TOOL", "STATUS", "FEATURES", "VERSION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := a.Styles.Renderer().NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return header.Padding(0, 1)
			case col == 1 && rows[row][1] == "ok":
				return a.Styles.Success.Padding(0, 1)
			case col == 1:
				return a.Styles.Error.Padding(0, 1)
			}
			return style
		})
	return t.Render()
}
