// SPDX-License-Identifier: MPL-2.0

package tui

import "github.com/charmbracelet/huh"

// ConfirmOptions configures a yes/no prompt.
type ConfirmOptions struct {
	// Title is the question.
	Title string
	// Description is an optional hint below the title.
	Description string
	// Affirmative labels the yes button (default "Yes").
	Affirmative string
	// Negative labels the no button (default "No").
	Negative string
	// Default is the preselected answer.
	Default bool
}

// Confirm asks a yes/no question.
func Confirm(opts ConfirmOptions, cfg Config) (bool, error) {
	result := opts.Default

	affirmative, negative := opts.Affirmative, opts.Negative
	if affirmative == "" {
		affirmative = "Yes"
	}
	if negative == "" {
		negative = "No"
	}

	c := huh.NewConfirm().
		Title(opts.Title).
		Affirmative(affirmative).
		Negative(negative).
		Value(&result)
	if opts.Description != "" {
		c = c.Description(opts.Description)
	}

	if err := runForm(newForm(cfg, huh.NewGroup(c))); err != nil {
		return false, err
	}
	return result, nil
}
