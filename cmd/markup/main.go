// markup renders file-backed components and serves them as pages and
// fragments.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version metadata injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit signals a non-zero exit for a command that has already reported
// its own error.
var errExit = errors.New("exit")

// run executes the CLI with the given args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintf(stderr, "markup: %v\n", err) //nolint:errcheck // best-effort stderr
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "markup",
		Short:         "Render components and serve pages with partial navigation",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	addSiteFlags(root)
	root.AddCommand(
		newServeCmd(stdout, stderr),
		newRenderCmd(stdout, stderr),
		newListCmd(stdout, stderr),
		newFetchCmd(stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(stdout, "markup %s (%s)\n", version, commit)
			return err
		},
	}
}
