// Package main provides the entry point for omfamily-cli.
//
// omfamily-cli scrapes and inspects omfamily exporters and runs the local
// family demo.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/omfamily/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
