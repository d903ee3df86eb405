// SPDX-License-Identifier: MPL-2.0

// Command qakit is a menu-driven toolkit of everyday QA tools.
package main

import cmd "github.com/mcewann/qakit/cmd/qakit"

func main() {
	cmd.Execute()
}
