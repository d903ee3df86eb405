// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcewann/qakit/internal/alias"
	"github.com/mcewann/qakit/internal/issue"
)

// aliasFlags override the alias config for one invocation.
type aliasFlags struct {
	name   string
	rcFile string
	target string
}

// newAliasCommand creates the `qakit alias` command tree.
func newAliasCommand(app *App) *cobra.Command {
	var flags aliasFlags

	aliasCmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage the shell alias for qakit",
		Long: `Manage the shell alias for qakit.

The alias is written to the startup file of the shell in $SHELL (bash,
zsh or fish) inside a marked block, so installing again replaces it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	aliasCmd.PersistentFlags().StringVar(&flags.name, "name", "", "alias name (default from config)")
	aliasCmd.PersistentFlags().StringVar(&flags.rcFile, "rc-file", "", "shell startup file (default detected from $SHELL)")

	install := &cobra.Command{
		Use:   "install",
		Short: "Add or update the alias",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.installAlias(flags)
		},
	}
	install.Flags().StringVar(&flags.target, "target", "", "command the alias runs (default this executable)")

	aliasCmd.AddCommand(install,
		&cobra.Command{
			Use:   "remove",
			Short: "Remove the alias block",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return app.removeAlias(flags)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the installed alias",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return app.showAlias(flags)
			},
		},
	)
	return aliasCmd
}

// aliasInstaller resolves the name and rc file from flags, then config,
// then $SHELL.
func (a *App) aliasInstaller(flags aliasFlags) (*alias.Installer, error) {
	name := flags.name
	if name == "" {
		name = a.Config.Alias.Name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, aliasError("locate home directory", "", err, "Set HOME to your home directory")
	}

	rcFile := flags.rcFile
	if rcFile == "" {
		rcFile = a.Config.Alias.RCFile
	}
	if rcFile == "" {
		rcFile, err = alias.DetectRCFile(os.Getenv("SHELL"), home)
		if err != nil {
			return nil, aliasError("detect shell startup file", os.Getenv("SHELL"), err,
				"Pass the file explicitly, e.g. qakit alias install --rc-file ~/.bashrc",
				"Or set alias.rc_file in the config file")
		}
	}
	rcFile = alias.ExpandHome(rcFile, home)

	inst, err := alias.New(rcFile, name, alias.WithLogger(a.Logger.WithPrefix("alias")))
	if err != nil {
		return nil, aliasError("configure alias", rcFile, err, "Alias names start with a letter or underscore")
	}
	return inst, nil
}

func (a *App) installAlias(flags aliasFlags) error {
	inst, err := a.aliasInstaller(flags)
	if err != nil {
		return a.reportError(err, 1)
	}

	target := flags.target
	if target == "" {
		exe, exeErr := os.Executable()
		if exeErr != nil {
			return a.reportError(aliasError("locate qakit executable", "", exeErr), 1)
		}
		if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
			exe = resolved
		}
		target = exe
	}

	changed, err := inst.Install(target)
	if err != nil {
		return a.reportError(aliasError("install alias", inst.RCFile(), err,
			"Check that the file is writable"), 1)
	}
	if !changed {
		fmt.Fprintf(a.stdout, "Alias already installed in %s\n", inst.RCFile())
		return nil
	}
	fmt.Fprintf(a.stdout, "%s Alias installed in %s\n", a.Styles.Success.Render("✓"), inst.RCFile())
	fmt.Fprintln(a.stdout, "Restart your shell or source the file to use it.")
	return nil
}

func (a *App) removeAlias(flags aliasFlags) error {
	inst, err := a.aliasInstaller(flags)
	if err != nil {
		return a.reportError(err, 1)
	}
	removed, err := inst.Remove()
	if err != nil {
		return a.reportError(aliasError("remove alias", inst.RCFile(), err), 1)
	}
	if !removed {
		fmt.Fprintf(a.stdout, "No qakit alias found in %s\n", inst.RCFile())
		return nil
	}
	fmt.Fprintf(a.stdout, "%s Alias removed from %s\n", a.Styles.Success.Render("✓"), inst.RCFile())
	return nil
}

func (a *App) showAlias(flags aliasFlags) error {
	inst, err := a.aliasInstaller(flags)
	if err != nil {
		return a.reportError(err, 1)
	}
	line, ok, err := inst.Installed()
	if err != nil {
		return a.reportError(aliasError("read alias", inst.RCFile(), err), 1)
	}
	if !ok {
		fmt.Fprintf(a.stdout, "No qakit alias found in %s\n", inst.RCFile())
		return &ExitError{Code: 1}
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", a.Styles.Cmd.Render(inst.RCFile()), line)
	return nil
}

func aliasError(op, resource string, cause error, suggestions ...string) *issue.ActionableError {
	return issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource).
		WithSuggestions(suggestions...).
		WithIssue(issue.AliasFailedId).
		Wrap(cause).
		Build()
}
