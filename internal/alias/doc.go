// SPDX-License-Identifier: MPL-2.0

// Package alias installs a shell alias for the qakit binary into the user's
// shell startup file.
//
// The alias lives in a block delimited by marker comments, so installing
// again replaces the block and removal deletes only qakit's lines.
package alias
