// Package main is the entry point for the lakehouse-cost CLI.
package main

import (
	"os"

	"lakehouse-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
