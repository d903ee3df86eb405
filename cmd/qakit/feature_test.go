// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mcewann/qakit/internal/config"
	"github.com/mcewann/qakit/internal/nwtest"
	"github.com/mcewann/qakit/internal/toolkit"
)

func skipWithoutSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

func withCommands(cmds map[string]string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Commands = cmds
	return cfg
}

func mustFeature(t *testing.T, app *App, id string) toolkit.Feature {
	t.Helper()
	f, err := app.Catalog.Lookup(id)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestRunFeature_Passthrough(t *testing.T) {
	t.Parallel()
	skipWithoutSh(t)

	app, stdout, _ := newTestApp(t, withCommands(map[string]string{
		toolkit.FeaturePing: `sh -c "echo pinged $HOST x$COUNT"`,
	}), &fakePrompter{})

	err := app.runFeature(context.Background(), featureRequest{
		feature: mustFeature(t, app, toolkit.FeaturePing),
		answers: map[string]string{"HOST": "10.0.0.1"},
	})
	if err != nil {
		t.Fatalf("runFeature: %v", err)
	}
	if stdout.String() != "pinged 10.0.0.1 x4\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunFeature_NonZeroExit(t *testing.T) {
	t.Parallel()
	skipWithoutSh(t)

	app, _, _ := newTestApp(t, withCommands(map[string]string{
		toolkit.FeatureMulticast: `sh -c "exit 3"`,
	}), &fakePrompter{})

	err := app.runFeature(context.Background(), featureRequest{feature: mustFeature(t, app, toolkit.FeatureMulticast)})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Errorf("err = %v, want ExitError code 3", err)
	}
}

func TestRunFeature_MissingTool(t *testing.T) {
	t.Parallel()

	app, _, stderr := newTestApp(t, nil, &fakePrompter{}, "ping")

	err := app.runFeature(context.Background(), featureRequest{
		feature: mustFeature(t, app, toolkit.FeaturePing),
		answers: map[string]string{"HOST": "h"},
	})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("err = %v, want ExitError code 1", err)
	}
	if !strings.Contains(stderr.String(), "ping is not installed or not in PATH") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunFeature_MissingValue(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(t, nil, &fakePrompter{})

	err := app.runFeature(context.Background(), featureRequest{feature: mustFeature(t, app, toolkit.FeaturePing)})
	if !errors.Is(err, toolkit.ErrMissingValue) {
		t.Fatalf("err = %v, want ErrMissingValue", err)
	}
	if !strings.Contains(app.formatError(err), "--set HOST=") {
		t.Errorf("suggestion missing: %s", app.formatError(err))
	}
}

func TestRunMonitor_TextSummary(t *testing.T) {
	t.Parallel()
	skipWithoutSh(t)

	app, stdout, _ := newTestApp(t, withCommands(map[string]string{
		toolkit.FeatureNWTest: `sh -c "printf 'Total: 500\nEncryp: 0\n100 sequence error\n'"`,
	}), &fakePrompter{})

	err := app.runFeature(context.Background(), featureRequest{feature: mustFeature(t, app, toolkit.FeatureNWTest)})
	if err != nil {
		t.Fatalf("runFeature: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"Total: 500\nEncryp: 0\n100 sequence error\n",
		"nwtest summary",
		"Total packets: 500",
		"No encryption detected",
		"PID sequence: 1 sequence errors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestRunMonitor_JSONSummary(t *testing.T) {
	t.Parallel()
	skipWithoutSh(t)

	cfg := withCommands(map[string]string{
		toolkit.FeatureNWTest: `sh -c "printf 'Encryp: 12\n7 sequence error\n'"`,
	})
	cfg.NWTest.PIDField = 0
	app, stdout, stderr := newTestApp(t, cfg, &fakePrompter{})

	err := app.runFeature(context.Background(), featureRequest{
		feature: mustFeature(t, app, toolkit.FeatureNWTest),
		summary: nwtest.FormatJSON,
	})
	if err != nil {
		t.Fatalf("runFeature: %v", err)
	}

	var got nwtest.Summary
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not a JSON summary: %v\n%s", err, stdout.String())
	}
	if got.EncryptedPackets != 12 || got.SequenceErrorsByPID["7"] != 1 {
		t.Errorf("summary = %+v", got)
	}
	if !strings.Contains(stderr.String(), "Encryp: 12") {
		t.Errorf("tool output should be echoed to stderr, got %q", stderr.String())
	}
}

func TestRunMonitor_InterruptedRunHasNoSummary(t *testing.T) {
	t.Parallel()
	skipWithoutSh(t)

	app, stdout, _ := newTestApp(t, withCommands(map[string]string{
		toolkit.FeatureNWTest: `sh -c "echo 'Total: 5'; sleep 10; echo 'Total: 6'"`,
	}), &fakePrompter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	err := app.runFeature(ctx, featureRequest{feature: mustFeature(t, app, toolkit.FeatureNWTest)})
	if elapsed := time.Since(start); elapsed > 8*time.Second {
		t.Errorf("cancellation took %s, the forked sleep was not killed", elapsed)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code == 0 {
		t.Fatalf("err = %v, want a non-zero ExitError", err)
	}
	if strings.Contains(stdout.String(), "nwtest summary") {
		t.Errorf("interrupted run printed a summary:\n%s", stdout.String())
	}
}

func TestRunMonitor_InvalidFormat(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(t, nil, &fakePrompter{})
	err := app.runFeature(context.Background(), featureRequest{
		feature: mustFeature(t, app, toolkit.FeatureNWTest),
		summary: "yaml",
	})
	if !errors.Is(err, nwtest.ErrInvalidFormat) {
		t.Errorf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestParseSets(t *testing.T) {
	t.Parallel()

	got, err := parseSets([]string{"host=10.0.0.1", "ARGS=-g 239.0.0.1 --x=y", "EMPTY="})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"HOST": "10.0.0.1", "ARGS": "-g 239.0.0.1 --x=y", "EMPTY": ""}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseSets([]string{bad}); err == nil {
			t.Errorf("parseSets(%q) should fail", bad)
		}
	}
}

func TestMissingRequired(t *testing.T) {
	t.Parallel()

	ping := toolkit.DefaultFeatures()[5]
	if ping.ID != toolkit.FeaturePing {
		t.Fatalf("unexpected feature order: %s", ping.ID)
	}
	if !missingRequired(ping, nil) {
		t.Error("HOST is required")
	}
	if missingRequired(ping, map[string]string{"HOST": "h"}) {
		t.Error("COUNT has a default and is not missing")
	}
}

func TestAskMissing_OnlyPendingPrompts(t *testing.T) {
	t.Parallel()

	p := &fakePrompter{answers: map[string]string{"COUNT": "9"}}
	app, _, _ := newTestApp(t, nil, p)

	got, err := app.askMissing(mustFeature(t, app, toolkit.FeaturePing), map[string]string{"HOST": "h"})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.asked) != 1 || len(p.asked[0]) != 1 || p.asked[0][0].Key != "COUNT" {
		t.Errorf("asked = %+v", p.asked)
	}
	if got["HOST"] != "h" || got["COUNT"] != "9" {
		t.Errorf("answers = %v", got)
	}
}
