// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrRequired is returned by the validator of a required input left blank.
var ErrRequired = errors.New("a value is required")

// InputOptions configures one text input.
type InputOptions struct {
	// Title is the question shown above the field.
	Title string
	// Description is an optional hint below the title.
	Description string
	// Placeholder is shown while the field is empty.
	Placeholder string
	// Value pre-fills the field.
	Value string
	// Required rejects blank answers.
	Required bool
}

// Input prompts for a single line of text.
func Input(opts InputOptions, cfg Config) (string, error) {
	answers, err := Inputs([]InputOptions{opts}, cfg)
	if err != nil {
		return "", err
	}
	return answers[0], nil
}

// Inputs prompts for several values on one form page and returns the
// answers in the order of opts.
func Inputs(opts []InputOptions, cfg Config) ([]string, error) {
	if len(opts) == 0 {
		return nil, nil
	}

	answers := make([]string, len(opts))
	fields := make([]huh.Field, len(opts))
	for i, o := range opts {
		answers[i] = o.Value
		in := huh.NewInput().
			Title(o.Title).
			Placeholder(o.Placeholder).
			Value(&answers[i])
		if o.Description != "" {
			in = in.Description(o.Description)
		}
		if o.Required {
			in = in.Validate(required)
		}
		fields[i] = in
	}

	if err := runForm(newForm(cfg, huh.NewGroup(fields...))); err != nil {
		return nil, err
	}
	for i := range answers {
		answers[i] = strings.TrimSpace(answers[i])
	}
	return answers, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return nil
}
