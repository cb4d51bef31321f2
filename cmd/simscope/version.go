package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/simscope"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of simscope",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "simscope version %s\n", strings.TrimSpace(simscope.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
