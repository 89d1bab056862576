// Package main is the entry point for the fencecost CLI.
package main

import (
	"os"

	"fencecost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
