// Package cli implements the ddlgen command line tool.
package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	success = color.New(color.FgGreen, color.Bold)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed, color.Bold)
)

// NewRootCommand builds the ddlgen command tree. Generated SQL goes to out;
// status lines go to the command's error stream.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "ddlgen",
		Short:         "Generate and apply SQL DDL from a database design file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(newGenerateCommand())
	root.AddCommand(newApplyCommand())
	return root
}

// Execute runs the CLI against the process arguments.
func Execute() int {
	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		failure.Fprintf(os.Stderr, "✗ %v\n", err)
		return 1
	}
	return 0
}

func printSuccess(cmd *cobra.Command, format string, args ...any) {
	success.Fprintf(cmd.ErrOrStderr(), "✓ "+format+"\n", args...)
}

func printWarning(cmd *cobra.Command, format string, args ...any) {
	warning.Fprintf(cmd.ErrOrStderr(), "! "+format+"\n", args...)
}

func printError(cmd *cobra.Command, err error) {
	failure.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
}
