// Command wcprobe runs the wallet connector edge-case battery.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/wcprobe/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and maps its error to a process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return cli.ExitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Flag and argument errors raised by cobra itself
	return cli.ExitCommandError
}
