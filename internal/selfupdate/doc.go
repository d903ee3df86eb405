// SPDX-License-Identifier: MPL-2.0

// Package selfupdate upgrades the running qakit binary from GitHub releases.
//
// Client talks to the Releases API. Updater compares the running version
// with the newest stable release using semantic versioning, then downloads
// the platform archive, checks it against the release's checksums.txt and
// renames the extracted binary over the executable.
package selfupdate
