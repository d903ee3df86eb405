// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mcewann/qakit/internal/toolkit"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "qakit",
		Short: "A menu of everyday QA tools",
		Long: `qakit runs the tools a QA engineer reaches for every day through one menu:
image conversion, video compression, multicast listing, nwtest stream
checks, CPU load, ping and downloads.

Run it without arguments for the interactive menu, or call a feature
directly:

  qakit ping --set HOST=10.0.0.1
  qakit nwtest -- 239.1.1.1 5000
  qakit deps`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd.Context(), flags)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd.Context(), app)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is the user config directory)")
	pf.StringVar(&flags.color, "color", "", "color output: auto, always or never")

	for _, f := range toolkit.DefaultFeatures() {
		rootCmd.AddCommand(newFeatureCommand(app, f))
	}
	rootCmd.AddCommand(
		newDepsCommand(app),
		newUpgradeCommand(app),
		newAliasCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs qakit with the process arguments and exits with its status.
// It is called by main.main().
func Execute() {
	os.Exit(run(context.Background(), NewApp(Dependencies{})))
}

func run(ctx context.Context, app *App) int {
	rootCmd := newRootCommand(app)
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.Err == nil {
				return
			}
			fmt.Fprintln(w, app.Styles.Error.Render("Error: ")+app.formatError(err))
		}),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
