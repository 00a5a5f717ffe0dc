// Package main is the entry point for the rental-quote CLI.
package main

import (
	"os"

	"rental-quote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
