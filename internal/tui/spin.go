// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// Spin shows a spinner titled title while action runs and returns its
// error. In accessible mode the title is printed once instead.
func Spin(ctx context.Context, title string, cfg Config, action func(context.Context) error) error {
	if cfg.Accessible {
		if cfg.Output != nil {
			fmt.Fprintln(cfg.Output, title)
		}
		return action(ctx)
	}

	var actionErr error
	err := spinner.New().
		Type(spinner.Dots).
		Title(" " + title).
		Context(ctx).
		Action(func() { actionErr = action(ctx) }).
		Run()
	if err != nil {
		return fmt.Errorf("spinner: %w", err)
	}
	return actionErr
}
