// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/mcewann/qakit/internal/toolkit"
	"github.com/mcewann/qakit/internal/tui"
)

type (
	// Prompter asks the user for input. The huh-backed implementation is
	// replaced in tests.
	Prompter interface {
		Select(title string, options []tui.Option[int]) (int, error)
		Ask(prompts []toolkit.Prompt) (map[string]string, error)
		Confirm(title string) (bool, error)
		Spin(ctx context.Context, title string, action func(context.Context) error) error
	}

	huhPrompter struct {
		cfg tui.Config
	}
)

func (p *huhPrompter) Select(title string, options []tui.Option[int]) (int, error) {
	return tui.Choose(tui.ChooseOptions[int]{
		Title:   title,
		Options: options,
		Height:  len(options) + 2,
	}, p.cfg)
}

// Ask prompts for every value in one form. Defaults are pre-filled.
func (p *huhPrompter) Ask(prompts []toolkit.Prompt) (map[string]string, error) {
	if len(prompts) == 0 {
		return map[string]string{}, nil
	}
	inputs := make([]tui.InputOptions, len(prompts))
	for i, pr := range prompts {
		desc := ""
		if pr.Optional {
			desc = "optional"
		}
		inputs[i] = tui.InputOptions{
			Title:       pr.Title,
			Description: desc,
			Placeholder: pr.Placeholder,
			Value:       pr.Default,
			Required:    !pr.Optional,
		}
	}
	values, err := tui.Inputs(inputs, p.cfg)
	if err != nil {
		return nil, err
	}
	answers := make(map[string]string, len(prompts))
	for i, pr := range prompts {
		answers[pr.Key] = values[i]
	}
	return answers, nil
}

func (p *huhPrompter) Confirm(title string) (bool, error) {
	return tui.Confirm(tui.ConfirmOptions{
		Title:       title,
		Affirmative: "Yes",
		Negative:    "No",
	}, p.cfg)
}

func (p *huhPrompter) Spin(ctx context.Context, title string, action func(context.Context) error) error {
	return tui.Spin(ctx, title, p.cfg, action)
}
