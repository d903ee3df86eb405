// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

const (
	// ThemeCharm uses the Charm theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula uses the Dracula theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin uses the Catppuccin theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 uses the Base16 theme.
	ThemeBase16 Theme = "base16"
	// ThemeBase uses the uncolored base theme.
	ThemeBase Theme = "base"
)

// ErrAborted is returned when the user cancels a prompt with ctrl+c or esc.
var ErrAborted = errors.New("user aborted")

type (
	// Theme represents the visual theme for forms.
	Theme string

	// Config holds common configuration for TUI components.
	Config struct {
		// Theme specifies the visual theme to use.
		Theme Theme
		// Accessible renders prompts as plain text lines.
		Accessible bool
		// Input is where answers are read from (nil for stdin).
		Input io.Reader
		// Output is where prompts are written (nil for the default).
		Output io.Writer
	}
)

// DefaultConfig returns the configuration for the current process. It
// enables accessible mode when stdin is not a terminal or ACCESSIBLE is set,
// and then prompts on stderr so they are not captured with the output.
func DefaultConfig() Config {
	accessible := !isInputTerminal() || os.Getenv("ACCESSIBLE") != ""

	var output io.Writer = os.Stdout
	if accessible {
		output = os.Stderr
	}

	return Config{
		Theme:      ThemeCharm,
		Accessible: accessible,
		Output:     output,
	}
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return isInputTerminal() && term.IsTerminal(int(os.Stdout.Fd()))
}

// isInputTerminal returns true if stdin is connected to a terminal.
func isInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm applies cfg to a form built from groups.
func newForm(cfg Config, groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).
		WithTheme(getHuhTheme(cfg.Theme)).
		WithAccessible(cfg.Accessible).
		WithShowHelp(!cfg.Accessible)
	if cfg.Input != nil {
		form = form.WithInput(cfg.Input)
	}
	if cfg.Output != nil {
		form = form.WithOutput(cfg.Output)
	}
	return form
}

// runForm runs form and maps huh's abort error to ErrAborted.
func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// getHuhTheme converts a Theme to a huh.Theme.
func getHuhTheme(t Theme) *huh.Theme {
	switch t {
	case ThemeDracula:
		return huh.ThemeDracula()
	case ThemeCatppuccin:
		return huh.ThemeCatppuccin()
	case ThemeBase16:
		return huh.ThemeBase16()
	case ThemeBase:
		return huh.ThemeBase()
	default:
		return huh.ThemeCharm()
	}
}
