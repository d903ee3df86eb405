// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcewann/qakit/internal/toolkit"
	"github.com/mcewann/qakit/internal/tui"
)

const (
	actionFeature menuAction = iota
	actionCheckUpdate
	actionUpdate
	actionAlias
	actionExit
)

const (
	msgGoodbye       = "Exiting QA Toolkit. Goodbye!"
	msgInvalidChoice = "Invalid choice. Please try again."
	msgDepsNotMet    = "Cannot execute '%s': Dependencies not met."
)

type (
	// menuAction tags a menu entry with what selecting it does.
	menuAction int

	// menuEntry is one row of the command table driving the menu.
	menuEntry struct {
		title   string
		action  menuAction
		feature toolkit.Feature
		ready   bool
	}
)

// menuEntries builds the command table: every feature followed by the
// maintenance actions. ready marks features whose tool is installed.
func (a *App) menuEntries(ready func(toolkit.Feature) bool) []menuEntry {
	var entries []menuEntry
	for _, f := range a.Catalog.Features() {
		entries = append(entries, menuEntry{
			title:   f.Title,
			action:  actionFeature,
			feature: f,
			ready:   ready(f),
		})
	}
	return append(entries,
		menuEntry{title: "Check for updates", action: actionCheckUpdate, ready: true},
		menuEntry{title: "Update qakit", action: actionUpdate, ready: true},
		menuEntry{title: "Install shell alias", action: actionAlias, ready: true},
		menuEntry{title: "Exit", action: actionExit, ready: true},
	)
}

func menuOptions(entries []menuEntry) []tui.Option[int] {
	opts := make([]tui.Option[int], len(entries))
	for i, e := range entries {
		title := fmt.Sprintf("%d. %s", i+1, e.title)
		if !e.ready {
			title += " (dependencies not met)"
		}
		opts[i] = tui.Option[int]{Title: title, Value: i}
	}
	return opts
}

// runMenu shows the banner and loops over the command table until the user
// exits, aborts the selection or completes an update.
func runMenu(ctx context.Context, app *App) error {
	fmt.Fprint(app.stdout, app.introText())

	report := app.Prober.Check(ctx, app.Catalog.Tools())
	entries := app.menuEntries(func(f toolkit.Feature) bool { return probeStatus(report, f) })
	options := menuOptions(entries)

	for {
		if err := ctx.Err(); err != nil {
			return &ExitError{Code: 130}
		}

		choice, err := app.Prompter.Select("Select an option", options)
		if err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(app.stdout, msgGoodbye)
				return nil
			}
			return err
		}
		if choice < 0 || choice >= len(entries) {
			fmt.Fprintln(app.stdout, app.Styles.Warning.Render(msgInvalidChoice))
			continue
		}

		done, err := app.dispatch(ctx, entries[choice])
		if err != nil {
			app.printMenuError(err)
		}
		if done {
			return nil
		}
	}
}

// dispatch runs one entry and reports whether the menu should exit.
func (a *App) dispatch(ctx context.Context, e menuEntry) (bool, error) {
	switch e.action {
	case actionFeature:
		if !e.ready {
			fmt.Fprintln(a.stdout, a.Styles.Error.Render(fmt.Sprintf(msgDepsNotMet, e.title)))
			return false, nil
		}
		answers, err := a.Prompter.Ask(e.feature.Prompts)
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(a.stdout, a.Styles.Subtitle.Render("Cancelled."))
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return false, a.runFeature(ctx, featureRequest{feature: e.feature, answers: answers})

	case actionCheckUpdate:
		return false, runUpgrade(ctx, a.upgradeParams("", true, false, menuHint))

	case actionUpdate:
		p := a.upgradeParams("", false, false, menuHint)
		p.restart = true
		return true, runUpgrade(ctx, p)

	case actionAlias:
		return false, a.installAlias(aliasFlags{})

	case actionExit:
		fmt.Fprintln(a.stdout, msgGoodbye)
		return true, nil
	}

	fmt.Fprintln(a.stdout, a.Styles.Warning.Render(msgInvalidChoice))
	return false, nil
}

// printMenuError reports a failed entry without leaving the menu. Errors
// already printed by the handler carry no message.
func (a *App) printMenuError(err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err == nil {
			if exitErr.Code != 0 {
				fmt.Fprintln(a.stdout, a.Styles.Subtitle.Render(fmt.Sprintf("Command exited with status %d.", exitErr.Code)))
			}
			return
		}
		err = exitErr.Err
	}
	fmt.Fprintln(a.stderr, a.Styles.Error.Render("Error: ")+a.formatError(err))
}
