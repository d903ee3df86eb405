// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the qakit command tree: the interactive menu, one
// subcommand per toolkit feature, and the deps, upgrade, alias and config
// maintenance commands.
package cmd
