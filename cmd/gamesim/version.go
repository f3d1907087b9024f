package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gamesim/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gamesim %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
