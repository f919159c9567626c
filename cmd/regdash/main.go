// Command regdash is a terminal dashboard for regulatory statistics.
package main

import (
	"fmt"
	"os"

	"github.com/rshade/regdash/internal/cli"
	"github.com/rshade/regdash/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string) int {
	root := cli.NewRootCmd(version.String())
	root.SetArgs(args)
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
