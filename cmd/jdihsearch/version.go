package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/jdih-search/internal/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "jdihsearch "+version.String())
	},
}
