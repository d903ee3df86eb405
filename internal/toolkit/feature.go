// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

const (
	// ModePassthrough runs the tool with its output shown as-is.
	ModePassthrough Mode = iota
	// ModeMonitor streams the tool output through the nwtest classifier.
	ModeMonitor
)

var (
	// ErrMissingValue is returned when a required prompt has no value.
	ErrMissingValue = errors.New("missing value")
	// ErrEmptyTemplate is returned when a template expands to no words.
	ErrEmptyTemplate = errors.New("command template is empty")
)

type (
	// Mode selects how the caller runs a feature's command.
	Mode int

	// Prompt is one user-supplied value of a feature.
	Prompt struct {
		// Key is the template variable the answer is bound to.
		Key string
		// Title is the question shown to the user.
		Title string
		// Placeholder is example input shown in an empty field.
		Placeholder string
		// Default is used when the answer is blank.
		Default string
		// Optional prompts may stay blank.
		Optional bool
	}

	// Feature is one menu entry backed by an external tool.
	Feature struct {
		// ID names the feature on the command line and in config overrides.
		ID string
		// Title is the menu label.
		Title string
		// Summary is a one-line help text.
		Summary string
		// Template is the command line, in shell words.
		Template string
		// Prompts lists the values to collect, in order.
		Prompts []Prompt
		// ArgsKey names a prompt whose answer is split into shell words and
		// appended to the command.
		ArgsKey string
		// Mode selects passthrough or monitored execution.
		Mode Mode
		// derive fills computed values from the collected answers.
		derive func(values map[string]string) error
	}

	// MissingValueError reports a required prompt left blank.
	MissingValueError struct {
		Feature string
		Key     string
	}
)

// Error implements error.
func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%s: %s is required", e.Feature, strings.ToLower(e.Key))
}

// Unwrap returns ErrMissingValue.
func (e *MissingValueError) Unwrap() error { return ErrMissingValue }

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeMonitor {
		return "monitor"
	}
	return "passthrough"
}

// Tool returns the program the template runs, e.g. "ffmpeg".
func (f Feature) Tool() string {
	words, err := shell.Fields(f.Template, func(string) string { return "" })
	if err != nil || len(words) == 0 {
		return ""
	}
	return words[0]
}

// Resolve applies defaults to the answers, checks required prompts and adds
// derived values. The input map is not modified.
func (f Feature) Resolve(answers map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(f.Prompts))
	for k, v := range answers {
		values[k] = strings.TrimSpace(v)
	}

	for _, p := range f.Prompts {
		if values[p.Key] == "" {
			values[p.Key] = p.Default
		}
		if values[p.Key] == "" && !p.Optional {
			return nil, &MissingValueError{Feature: f.ID, Key: p.Key}
		}
	}

	if f.derive != nil {
		if err := f.derive(values); err != nil {
			return nil, fmt.Errorf("%s: %w", f.ID, err)
		}
	}
	return values, nil
}

// Command expands the template with values and returns the argv, followed
// by the words of the ArgsKey value and then extra.
func (f Feature) Command(values map[string]string, extra ...string) ([]string, error) {
	argv, err := shell.Fields(f.Template, func(name string) string {
		return values[name]
	})
	if err != nil {
		return nil, fmt.Errorf("expanding %s template: %w", f.ID, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%s: %w", f.ID, ErrEmptyTemplate)
	}

	if f.ArgsKey != "" && values[f.ArgsKey] != "" {
		words, splitErr := shell.Fields(values[f.ArgsKey], literalVars)
		if splitErr != nil {
			return nil, fmt.Errorf("parsing %s arguments: %w", f.ID, splitErr)
		}
		argv = append(argv, words...)
	}

	return append(argv, extra...), nil
}

// literalVars keeps $NAME references in typed arguments as written instead of
// reading qakit's environment. IFS stays unset so words split on whitespace.
func literalVars(name string) string {
	if name == "IFS" {
		return ""
	}
	return "$" + name
}
