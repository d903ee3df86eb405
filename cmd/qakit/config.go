// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mcewann/qakit/internal/config"
)

// newConfigCommand creates the `qakit config` command tree. The commands
// read the configuration App loaded for this invocation.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage qakit configuration",
		Long: `Manage qakit configuration.

Configuration is stored in:
  - Linux: ~/.config/qakit/config.cue
  - macOS: ~/Library/Application Support/qakit/config.cue
  - Windows: %APPDATA%\qakit\config.cue

A qakit.cue file in the working directory is used when the user file is
absent. QAKIT_* environment variables override file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.initConfig(force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cfgCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the current configuration",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				app.showConfig()
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				explicit, _ := cmd.Flags().GetString("config")
				return app.showConfigPath(explicit)
			},
		},
		initCmd,
		&cobra.Command{
			Use:   "dump",
			Short: "Output the effective configuration as CUE",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				fmt.Fprint(app.stdout, config.GenerateCUE(app.Config))
				return nil
			},
		},
	)
	return cfgCmd
}

func (a *App) showConfig() {
	key, value, muted := a.Styles.Cmd, a.Styles.Success, a.Styles.Subtitle
	cfg := a.Config

	fmt.Fprintln(a.stdout, a.Styles.Title.Render("Current Configuration"))
	fmt.Fprintln(a.stdout)
	if a.ConfigPath != "" {
		fmt.Fprintf(a.stdout, "%s: %s\n", key.Render("Config file"), a.ConfigPath)
	} else {
		fmt.Fprintf(a.stdout, "%s: %s\n", key.Render("Config file"), muted.Render("(using defaults)"))
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", key.Render("commands"))
	if len(cfg.Commands) == 0 {
		fmt.Fprintf(a.stdout, "  %s\n", muted.Render("(built-in templates)"))
	}
	for _, id := range slices.Sorted(maps.Keys(cfg.Commands)) {
		fmt.Fprintf(a.stdout, "  %s: %s\n", id, value.Render(cfg.Commands[id]))
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", key.Render("nwtest"))
	fmt.Fprintf(a.stdout, "  pid_field: %s\n", value.Render(fmt.Sprint(cfg.NWTest.PIDField)))
	fmt.Fprintf(a.stdout, "  pty: %s\n", value.Render(fmt.Sprint(cfg.NWTest.PTY)))

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", key.Render("ui"))
	fmt.Fprintf(a.stdout, "  color: %s\n", value.Render(cfg.UI.Color.String()))
	fmt.Fprintf(a.stdout, "  verbose: %s\n", value.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(a.stdout, "  theme: %s\n", value.Render(cfg.UI.Theme.String()))
	fmt.Fprintf(a.stdout, "  accessible: %s\n", value.Render(fmt.Sprint(cfg.UI.Accessible)))

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", key.Render("update"))
	fmt.Fprintf(a.stdout, "  repository: %s\n", value.Render(cfg.Update.Owner+"/"+cfg.Update.Repo))

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", key.Render("alias"))
	fmt.Fprintf(a.stdout, "  name: %s\n", value.Render(cfg.Alias.Name))
	rc := cfg.Alias.RCFile
	if rc == "" {
		rc = muted.Render("(detected from $SHELL)")
	} else {
		rc = value.Render(rc)
	}
	fmt.Fprintf(a.stdout, "  rc_file: %s\n", rc)
}

func (a *App) showConfigPath(explicit string) error {
	path, exists, err := config.FilePath(config.LoadOptions{ConfigFilePath: explicit})
	if err != nil {
		return err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Config directory: %s\n", dir)
	if exists {
		fmt.Fprintf(a.stdout, "Config file: %s\n", path)
	} else {
		fmt.Fprintf(a.stdout, "Config file: %s %s\n", path, a.Styles.Subtitle.Render("(not created)"))
	}
	return nil
}

func (a *App) initConfig(force bool) error {
	path, existed, err := config.FilePath(config.LoadOptions{})
	if err != nil {
		return err
	}
	if existed && !force {
		fmt.Fprintf(a.stdout, "Configuration already exists at %s (use --force to overwrite)\n", path)
		return nil
	}
	if path, err = config.CreateDefaultConfig(force); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", a.Styles.Success.Render("✓"), path)
	return nil
}
