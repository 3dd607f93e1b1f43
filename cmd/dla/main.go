// Package main provides the DLA command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "v0.0.1-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dla",
		Short:        "Headsail DLA driver tools",
		Long:         "Run convolution layers through the DLA driver against the software accelerator model.",
		SilenceUsage: true,
	}
	root.AddCommand(newVersionCmd(), newConvCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Born DLA %s\n", version)
		},
	}
}
