// SPDX-License-Identifier: MPL-2.0

package tui

import "github.com/charmbracelet/huh"

type (
	// Option is one selectable entry.
	Option[T comparable] struct {
		// Title is the label shown in the list.
		Title string
		// Value is returned when the option is picked.
		Value T
	}

	// ChooseOptions configures a single-select prompt.
	ChooseOptions[T comparable] struct {
		// Title is the prompt shown above the options.
		Title string
		// Description is an optional hint below the title.
		Description string
		// Options are the entries, in display order.
		Options []Option[T]
		// Height limits the number of visible options (0 for auto).
		Height int
	}
)

// Choose prompts the user to pick one option and returns its value.
func Choose[T comparable](opts ChooseOptions[T], cfg Config) (T, error) {
	var result T

	sel := huh.NewSelect[T]().
		Title(opts.Title).
		Options(huhOptions(opts.Options)...).
		Value(&result)
	if opts.Description != "" {
		sel = sel.Description(opts.Description)
	}
	if opts.Height > 0 {
		sel = sel.Height(opts.Height)
	}

	if err := runForm(newForm(cfg, huh.NewGroup(sel))); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func huhOptions[T comparable](options []Option[T]) []huh.Option[T] {
	out := make([]huh.Option[T], len(options))
	for i, o := range options {
		out[i] = huh.NewOption(o.Title, o.Value)
	}
	return out
}
