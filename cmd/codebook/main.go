// Package main provides the codebook binary entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/codebook/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// An ExitError has already been reported by its command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
