// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/mvnmcp/cmd/mvnmcp"

func main() {
	cmd.Execute()
}
