// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/treerun/treerun/cmd/treerun"

func main() {
	cmd.Execute()
}
