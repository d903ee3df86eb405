// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcewann/qakit/internal/issue"
	"github.com/mcewann/qakit/internal/selfupdate"
)

const (
	cliHint  = "Run 'qakit upgrade' to install."
	menuHint = "Run the 'Update qakit' option to update."
)

// upgradeParams bundles the dependencies and flags for an upgrade, so
// runUpgrade can be tested without a Cobra command or the live GitHub API.
type upgradeParams struct {
	stdout    io.Writer
	stderr    io.Writer
	styles    Styles
	prompter  Prompter
	updater   *selfupdate.Updater
	target    string // target version (empty = latest)
	check     bool   // report availability without installing
	yes       bool   // skip the confirmation prompt
	hint      string // how to install, shown in check mode
	restart   bool   // re-exec the new binary after replacing it
	restartFn func(string) error
}

// newUpgradeCommand creates `qakit upgrade`, which replaces the binary with
// the latest stable release or a specific version from GitHub Releases.
func newUpgradeCommand(app *App) *cobra.Command {
	var check, yes bool

	cmd := &cobra.Command{
		Use:   "upgrade [version]",
		Short: "Update qakit to the latest stable release or a specific version",
		Long: `Update qakit to the latest stable release or a specific version.

The new binary is downloaded from GitHub Releases, checked against the
release's SHA-256 checksums and renamed over the running executable.
Set GITHUB_TOKEN to raise the API rate limit.`,
		Example: `  # Upgrade to latest stable
  qakit upgrade

  # Check for updates without installing
  qakit upgrade --check

  # Install a specific version without asking
  qakit upgrade v1.2.0 --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) > 0 {
				target = args[0]
			}
			return runUpgrade(cmd.Context(), app.upgradeParams(target, check, yes, cliHint))
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check for an available upgrade without installing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// upgradeParams builds the updater from the update config.
func (a *App) upgradeParams(target string, check, yes bool, hint string) upgradeParams {
	clientOpts := []selfupdate.ClientOption{selfupdate.WithUserAgent("qakit/" + Version)}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		clientOpts = append(clientOpts, selfupdate.WithToken(token))
	}
	if base := os.Getenv("QAKIT_GITHUB_API"); base != "" {
		clientOpts = append(clientOpts, selfupdate.WithBaseURL(base))
	}
	client := selfupdate.NewClient(a.Config.Update.Owner, a.Config.Update.Repo, clientOpts...)

	return upgradeParams{
		stdout:    a.stdout,
		stderr:    a.stderr,
		styles:    a.Styles,
		prompter:  a.Prompter,
		updater:   selfupdate.New(client, Version, selfupdate.WithLogger(a.Logger.WithPrefix("selfupdate"))),
		target:    target,
		check:     check,
		yes:       yes,
		hint:      hint,
		restartFn: selfupdate.Restart,
	}
}

// runUpgrade is the core upgrade logic, separated from Cobra for
// testability.
//
// Flow:
//  1. Check for an available upgrade via the GitHub API.
//  2. If already up to date, print status and return.
//  3. If check only, print availability and the install hint.
//  4. Otherwise confirm (unless yes), download, verify and replace.
//  5. Optionally restart into the new binary.
func runUpgrade(ctx context.Context, p upgradeParams) error {
	var check *selfupdate.CheckResult
	err := p.prompter.Spin(ctx, "Checking for updates...", func(ctx context.Context) error {
		var checkErr error
		check, checkErr = p.updater.Check(ctx, p.target)
		return checkErr
	})
	if err != nil {
		return upgradeFailure(p, fmt.Errorf("checking for upgrade: %w", err))
	}

	fmt.Fprintf(p.stdout, "Current version: %s\n", check.Current)
	fmt.Fprintf(p.stdout, "Latest version:  %s\n", check.Latest)

	if !check.Available {
		fmt.Fprintln(p.stdout, p.styles.Success.Render(check.Message))
		return nil
	}
	fmt.Fprintln(p.stdout, p.styles.Warning.Render(check.Message))

	if p.check {
		fmt.Fprintln(p.stdout, p.hint)
		return nil
	}

	if !p.yes {
		confirmed, confirmErr := p.prompter.Confirm(fmt.Sprintf("Upgrade qakit from %s to %s?", check.Current, check.Latest))
		if confirmErr != nil {
			return fmt.Errorf("confirmation prompt: %w", confirmErr)
		}
		if !confirmed {
			return nil
		}
	}

	var path string
	err = p.prompter.Spin(ctx, "Downloading qakit "+check.Latest+"...", func(ctx context.Context) error {
		var applyErr error
		path, applyErr = p.updater.Apply(ctx, check.Release)
		return applyErr
	})
	if err != nil {
		return upgradeFailure(p, fmt.Errorf("applying upgrade: %w", err))
	}

	fmt.Fprintln(p.stdout, p.styles.Success.Render("Successfully upgraded to "+check.Latest))

	if p.restart {
		fmt.Fprintln(p.stdout, "Restarting qakit...")
		if err := p.restartFn(path); err != nil {
			fmt.Fprintln(p.stdout, "Please restart qakit to use the new version.")
		}
	}
	return nil
}

// upgradeFailure reports err with remediation tailored to its cause and
// returns an ExitError: 1 for user-correctable failures, 2 otherwise.
func upgradeFailure(p upgradeParams, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("upgrade qakit").
		WithIssue(issue.UpdateFailedId).
		Wrap(err)

	var (
		rateLimitErr *selfupdate.RateLimitError
		checksumErr  *selfupdate.ChecksumError
	)
	code := 2
	switch {
	case errors.As(err, &rateLimitErr):
		ec.WithSuggestions("Set a GitHub token to raise the rate limit: export GITHUB_TOKEN=ghp_...", "Then retry: qakit upgrade")
	case errors.As(err, &checksumErr):
		ec.WithSuggestion("The download may be corrupted. Please try again")
	case errors.Is(err, os.ErrPermission):
		code = 1
		ec.WithIssue(issue.PermissionDeniedId).
			WithSuggestion("Run with permission to write the binary's directory, e.g. sudo qakit upgrade")
	case errors.Is(err, selfupdate.ErrReleaseNotFound), errors.Is(err, selfupdate.ErrNoReleases):
		code = 1
		ec.WithSuggestion("Check the version against the project's releases page")
	default:
		ec.WithSuggestions("Check your network connection and try again", "If behind a firewall, set GITHUB_TOKEN for authenticated access")
	}

	ae := ec.Build()
	fmt.Fprintln(p.stderr, p.styles.Error.Render("Error: ")+ae.Format(false))
	return &ExitError{Code: code}
}
