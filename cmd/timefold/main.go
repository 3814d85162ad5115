// Command timefold drives the rollback-sync engine from the command
// line: apply calls, advance time, reset state, and check determinism
// against a guest wasm image.
package main

import (
	"fmt"
	"os"

	"github.com/foldrun/timefold/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
