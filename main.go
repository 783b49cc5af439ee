// Package main is the entry point for the xdrq CLI.
// It runs ad-hoc queries against the XDR query service.
package main

import (
	"xdrquery/cli/cmd"
)

func main() {
	cmd.Execute()
}
