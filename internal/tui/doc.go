// SPDX-License-Identifier: MPL-2.0

// Package tui wraps charmbracelet/huh forms for qakit's prompts: the main
// menu, feature value prompts, confirmations and spinners.
//
// When stdin is not a terminal, or ACCESSIBLE is set, forms run in huh's
// accessible mode and prompt line by line on stderr so piped use and
// screen readers keep working.
package tui
