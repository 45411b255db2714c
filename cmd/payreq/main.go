// Package main is the entry point for the payreq CLI.
package main

import (
	"os"

	"github.com/mrz1836/payreq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
