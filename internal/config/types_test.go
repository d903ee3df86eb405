// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestColorMode_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode ColorMode
		want bool
	}{
		{ColorAuto, true},
		{ColorAlways, true},
		{ColorNever, true},
		{"", false},
		{"AUTO", false},
		{"rainbow", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()

			isValid, errs := tt.mode.IsValid()
			if isValid != tt.want {
				t.Errorf("ColorMode(%q).IsValid() = %v, want %v", tt.mode, isValid, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidColorMode)) {
				t.Errorf("error should wrap ErrInvalidColorMode, got: %v", errs)
			}
		})
	}
}

func TestTheme_IsValid(t *testing.T) {
	t.Parallel()

	for _, theme := range []Theme{ThemeCharm, ThemeDracula, ThemeCatppuccin, ThemeBase16, ThemeBase} {
		if ok, errs := theme.IsValid(); !ok {
			t.Errorf("Theme(%q).IsValid() = false, %v", theme, errs)
		}
	}
	ok, errs := Theme("solarized").IsValid()
	if ok || !errors.Is(errs[0], ErrInvalidTheme) {
		t.Errorf("Theme(solarized).IsValid() = %v, %v", ok, errs)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	if ok, errs := DefaultConfig().IsValid(); !ok {
		t.Fatalf("default config is invalid: %v", errs)
	}

	cfg := DefaultConfig()
	cfg.NWTest.PIDField = -1
	cfg.Alias.Name = "qa kit"
	cfg.UI.Color = "sometimes"

	ok, errs := cfg.IsValid()
	if ok {
		t.Fatal("expected invalid config")
	}
	err := errs[0]
	for _, sentinel := range []error{ErrInvalidConfig, ErrInvalidPIDField, ErrInvalidAliasName, ErrInvalidColorMode} {
		if !errors.Is(err, sentinel) {
			t.Errorf("error should wrap %v, got: %v", sentinel, err)
		}
	}

	var cfgErr *InvalidConfigError
	if !errors.As(err, &cfgErr) || len(cfgErr.FieldErrors) != 3 {
		t.Errorf("expected 3 field errors, got: %v", err)
	}
}
