// SPDX-License-Identifier: MPL-2.0

// Package deps checks that the external tools behind qakit features are
// installed and records the version each one reports.
package deps
