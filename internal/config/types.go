// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// ColorAuto colors output when stdout is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colored output.
	ColorAlways ColorMode = "always"
	// ColorNever disables colored output.
	ColorNever ColorMode = "never"

	// ThemeCharm is the default huh form theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula is the Dracula form theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin is the Catppuccin form theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 is the Base16 form theme.
	ThemeBase16 Theme = "base16"
	// ThemeBase is the uncolored form theme.
	ThemeBase Theme = "base"

	// DefaultPIDField is the whitespace token index read as the PID of a
	// sequence error line.
	DefaultPIDField = 1
	// DefaultAliasName is the shell alias installed for qakit.
	DefaultAliasName = "qa"
	// DefaultUpdateOwner is the GitHub owner of the release repository.
	DefaultUpdateOwner = "McEwann"
	// DefaultUpdateRepo is the GitHub release repository.
	DefaultUpdateRepo = "QAkit"
)

var (
	// ErrInvalidColorMode is returned when a ColorMode value is not recognized.
	ErrInvalidColorMode = errors.New("invalid color mode")
	// ErrInvalidTheme is returned when a Theme value is not recognized.
	ErrInvalidTheme = errors.New("invalid theme")
	// ErrInvalidPIDField is returned for a negative PID field index.
	ErrInvalidPIDField = errors.New("invalid pid field")
	// ErrInvalidAliasName is returned for an alias that is not a shell word.
	ErrInvalidAliasName = errors.New("invalid alias name")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	aliasNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

type (
	// ColorMode selects when output is colored.
	ColorMode string

	// InvalidColorModeError wraps ErrInvalidColorMode.
	InvalidColorModeError struct {
		Value ColorMode
	}

	// Theme names a huh form theme.
	Theme string

	// InvalidThemeError wraps ErrInvalidTheme.
	InvalidThemeError struct {
		Value Theme
	}

	// InvalidPIDFieldError wraps ErrInvalidPIDField.
	InvalidPIDFieldError struct {
		Value int
	}

	// InvalidAliasNameError wraps ErrInvalidAliasName.
	InvalidAliasNameError struct {
		Value string
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Commands overrides feature command templates, keyed by feature ID.
		Commands map[string]string `json:"commands" mapstructure:"commands"`
		// NWTest configures the nwtest monitor.
		NWTest NWTestConfig `json:"nwtest" mapstructure:"nwtest"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Update configures the release source for self-update.
		Update UpdateConfig `json:"update" mapstructure:"update"`
		// Alias configures the shell alias installer.
		Alias AliasConfig `json:"alias" mapstructure:"alias"`
	}

	// NWTestConfig configures the nwtest monitor.
	NWTestConfig struct {
		// PIDField is the token index holding the PID on sequence error lines.
		PIDField int `json:"pid_field" mapstructure:"pid_field"`
		// PTY runs nwtest on a pseudo-terminal so it keeps line buffering.
		PTY bool `json:"pty" mapstructure:"pty"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Color selects when output is colored.
		Color ColorMode `json:"color" mapstructure:"color"`
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Theme selects the form theme.
		Theme Theme `json:"theme" mapstructure:"theme"`
		// Accessible renders forms as plain line prompts.
		Accessible bool `json:"accessible" mapstructure:"accessible"`
	}

	// UpdateConfig names the GitHub repository releases are fetched from.
	UpdateConfig struct {
		Owner string `json:"owner" mapstructure:"owner"`
		Repo  string `json:"repo" mapstructure:"repo"`
	}

	// AliasConfig configures the shell alias installer.
	AliasConfig struct {
		// Name is the alias word.
		Name string `json:"name" mapstructure:"name"`
		// RCFile is the shell startup file; empty means detect from $SHELL.
		RCFile string `json:"rc_file" mapstructure:"rc_file"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Commands: map[string]string{},
		NWTest: NWTestConfig{
			PIDField: DefaultPIDField,
		},
		UI: UIConfig{
			Color: ColorAuto,
			Theme: ThemeCharm,
		},
		Update: UpdateConfig{
			Owner: DefaultUpdateOwner,
			Repo:  DefaultUpdateRepo,
		},
		Alias: AliasConfig{
			Name: DefaultAliasName,
		},
	}
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.Color.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.Theme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.NWTest.PIDField < 0 {
		errs = append(errs, &InvalidPIDFieldError{Value: c.NWTest.PIDField})
	}
	if !aliasNamePattern.MatchString(c.Alias.Name) {
		errs = append(errs, &InvalidAliasNameError{Value: c.Alias.Name})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the ColorMode.
func (m ColorMode) String() string { return string(m) }

// IsValid returns whether the ColorMode is one of the defined modes.
func (m ColorMode) IsValid() (bool, []error) {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true, nil
	default:
		return false, []error{&InvalidColorModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidColorModeError.
func (e *InvalidColorModeError) Error() string {
	return fmt.Sprintf("invalid color mode %q (valid: auto, always, never)", e.Value)
}

// Unwrap returns ErrInvalidColorMode for errors.Is() compatibility.
func (e *InvalidColorModeError) Unwrap() error { return ErrInvalidColorMode }

// String returns the string representation of the Theme.
func (t Theme) String() string { return string(t) }

// IsValid returns whether the Theme is one of the defined themes.
func (t Theme) IsValid() (bool, []error) {
	switch t {
	case ThemeCharm, ThemeDracula, ThemeCatppuccin, ThemeBase16, ThemeBase:
		return true, nil
	default:
		return false, []error{&InvalidThemeError{Value: t}}
	}
}

// Error implements the error interface for InvalidThemeError.
func (e *InvalidThemeError) Error() string {
	return fmt.Sprintf("invalid theme %q (valid: charm, dracula, catppuccin, base16, base)", e.Value)
}

// Unwrap returns ErrInvalidTheme for errors.Is() compatibility.
func (e *InvalidThemeError) Unwrap() error { return ErrInvalidTheme }

// Error implements the error interface for InvalidPIDFieldError.
func (e *InvalidPIDFieldError) Error() string {
	return fmt.Sprintf("invalid nwtest pid field %d: must be zero or greater", e.Value)
}

// Unwrap returns ErrInvalidPIDField for errors.Is() compatibility.
func (e *InvalidPIDFieldError) Unwrap() error { return ErrInvalidPIDField }

// Error implements the error interface for InvalidAliasNameError.
func (e *InvalidAliasNameError) Error() string {
	return fmt.Sprintf("invalid alias name %q: must be a single shell word", e.Value)
}

// Unwrap returns ErrInvalidAliasName for errors.Is() compatibility.
func (e *InvalidAliasNameError) Unwrap() error { return ErrInvalidAliasName }
