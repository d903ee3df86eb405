// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mcewann/qakit/internal/issue"
	"github.com/mcewann/qakit/internal/testutil"
)

// isolate points every config lookup at a fresh temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	cfgDir := filepath.Join(tmp, AppName)
	SetConfigDirOverride(cfgDir)
	t.Cleanup(Reset)
	testutil.MustChdir(t, tmp)
	return cfgDir
}

func load(t *testing.T, opts LoadOptions) (*Config, string, error) {
	t.Helper()
	return NewProvider().Load(context.Background(), opts)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.NWTest.PIDField != 1 {
		t.Errorf("PIDField = %d, want 1", cfg.NWTest.PIDField)
	}
	if cfg.UI.Color != ColorAuto || cfg.UI.Theme != ThemeCharm {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.Update.Owner != "McEwann" || cfg.Update.Repo != "QAkit" {
		t.Errorf("Update = %+v", cfg.Update)
	}
	if cfg.Alias.Name != "qa" || cfg.Alias.RCFile != "" {
		t.Errorf("Alias = %+v", cfg.Alias)
	}
	if cfg.Commands == nil || len(cfg.Commands) != 0 {
		t.Errorf("Commands = %v, want empty map", cfg.Commands)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is linux only")
	}
	Reset()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != filepath.Join(dir, AppName) {
		t.Errorf("ConfigDir() = %q, want %q", got, filepath.Join(dir, AppName))
	}
}

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, path, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.NWTest.PIDField != DefaultPIDField || cfg.UI.Color != ColorAuto {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_UserConfigFile(t *testing.T) {
	cfgDir := isolate(t)
	cfgPath := testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `
commands: ping: "ping -n \"$COUNT\" \"$HOST\""
nwtest: pid_field: 0
ui: {
	color: "never"
	theme: "dracula"
}
`)

	cfg, path, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != cfgPath {
		t.Errorf("path = %q, want %q", path, cfgPath)
	}
	if cfg.Commands["ping"] != `ping -n "$COUNT" "$HOST"` {
		t.Errorf("Commands = %v", cfg.Commands)
	}
	if cfg.NWTest.PIDField != 0 {
		t.Errorf("PIDField = %d, want 0", cfg.NWTest.PIDField)
	}
	if cfg.UI.Color != ColorNever || cfg.UI.Theme != ThemeDracula {
		t.Errorf("UI = %+v", cfg.UI)
	}
	// Untouched keys keep their defaults.
	if cfg.Alias.Name != DefaultAliasName || cfg.Update.Repo != DefaultUpdateRepo {
		t.Errorf("defaults lost: %+v %+v", cfg.Alias, cfg.Update)
	}
}

func TestLoad_LocalConfigFile(t *testing.T) {
	isolate(t)
	testutil.MustWriteFile(t, LocalConfigFile, `alias: name: "qk"`)

	cfg, path, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != LocalConfigFile || cfg.Alias.Name != "qk" {
		t.Errorf("path = %q, alias = %q", path, cfg.Alias.Name)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	cfgDir := isolate(t)
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `ui: color: "always"`)
	t.Setenv("QAKIT_UI_COLOR", "never")
	t.Setenv("QAKIT_NWTEST_PID_FIELD", "2")

	cfg, _, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UI.Color != ColorNever {
		t.Errorf("Color = %q, want never", cfg.UI.Color)
	}
	if cfg.NWTest.PIDField != 2 {
		t.Errorf("PIDField = %d, want 2", cfg.NWTest.PIDField)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("QAKIT_UI_COLOR", "rainbow")

	_, _, err := load(t, LoadOptions{})
	if !errors.Is(err, ErrInvalidColorMode) {
		t.Fatalf("err = %v, want ErrInvalidColorMode", err)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"wrong type", `ui: verbose: "yes"`, "ui.verbose"},
		{"unknown color", `ui: color: "rainbow"`, "ui.color"},
		{"negative pid field", `nwtest: pid_field: -1`, "nwtest.pid_field"},
		{"unknown feature override", `commands: teleport: "beam me up"`, "teleport"},
		{"blank override", `commands: ping: "  "`, "commands.ping"},
		{"unknown key", `colour: "never"`, "colour"},
		{"bad alias name", `alias: name: "q a"`, "alias.name"},
		{"syntax error", `ui: {`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgDir := isolate(t)
			cfgPath := testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), tt.content)

			_, _, err := load(t, LoadOptions{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be actionable, got %T", err)
			}
			if ae.Operation != "load configuration" || ae.Resource != cfgPath {
				t.Errorf("context = %q %q", ae.Operation, ae.Resource)
			}
			if ae.IssueID != issue.ConfigLoadFailedId {
				t.Errorf("IssueID = %d", ae.IssueID)
			}
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	custom := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "custom.cue"), `update: {owner: "lab", repo: "qakit-fork"}`)

	cfg, path, err := load(t, LoadOptions{ConfigFilePath: custom})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != custom || cfg.Update.Owner != "lab" || cfg.Update.Repo != "qakit-fork" {
		t.Errorf("path = %q, update = %+v", path, cfg.Update)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)

	_, _, err := load(t, LoadOptions{ConfigFilePath: "/does/not/exist.cue"})
	if err == nil {
		t.Fatal("expected an error for a missing explicit config")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	cfgDir := isolate(t)

	want := DefaultConfig()
	want.Commands["stress"] = `stress-ng --cpu "$WORKERS" --timeout "${DURATION}s" --metrics`
	want.NWTest.PTY = true
	want.UI.Verbose = true
	want.Alias.RCFile = "~/.zshrc"
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), GenerateCUE(want))

	got, _, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load(GenerateCUE(cfg)): %v", err)
	}
	if got.Commands["stress"] != want.Commands["stress"] {
		t.Errorf("stress override = %q", got.Commands["stress"])
	}
	if !got.NWTest.PTY || !got.UI.Verbose || got.Alias.RCFile != "~/.zshrc" {
		t.Errorf("got = %+v", got)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	cfgDir := isolate(t)

	path, err := CreateDefaultConfig(false)
	if err != nil {
		t.Fatalf("CreateDefaultConfig: %v", err)
	}
	if path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	// Existing files are kept unless forced.
	testutil.MustWriteFile(t, path, `ui: verbose: true`)
	if _, err := CreateDefaultConfig(false); err != nil {
		t.Fatal(err)
	}
	if got := testutil.MustReadFile(t, path); got != `ui: verbose: true` {
		t.Errorf("file was overwritten: %q", got)
	}

	if _, err := CreateDefaultConfig(true); err != nil {
		t.Fatal(err)
	}
	if got := testutil.MustReadFile(t, path); !strings.Contains(got, "pid_field: 1") {
		t.Errorf("forced file = %q", got)
	}
}

func TestFilePath(t *testing.T) {
	cfgDir := isolate(t)

	path, exists, err := FilePath(LoadOptions{})
	if err != nil || exists || path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("FilePath() = %q, %v, %v", path, exists, err)
	}

	path, exists, err = FilePath(LoadOptions{ConfigFilePath: "x.cue"})
	if err != nil || exists || path != "x.cue" {
		t.Errorf("FilePath(explicit) = %q, %v, %v", path, exists, err)
	}
}

func TestSchema_Embedded(t *testing.T) {
	t.Parallel()

	if !strings.Contains(Schema(), "#Config") {
		t.Error("embedded schema should define #Config")
	}
}
