// Command trajcon compiles, queries, records and replays region-gated
// trajectory constraints.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/trajcon/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own errors in the selected format; only
		// cobra's own failures (unknown flags, missing args) reach here
		// unreported.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
