// SPDX-License-Identifier: MPL-2.0

// Package config handles qakit configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/qakit/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/qakit/config.cue on macOS and
// %APPDATA%\qakit\config.cue on Windows), falling back to ./qakit.cue. Files are
// validated against the embedded CUE schema (config_schema.cue) before being merged
// over the defaults. QAKIT_* environment variables override file values, for
// example QAKIT_UI_COLOR=never.
package config
