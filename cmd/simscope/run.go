package main

import (
	"github.com/aretw0/simscope/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation to completion and print the inspection report",
	Long: `Runs the demo simulation with the configured inspectors, breakpoints and
traces until its queue drains, the step limit runs out or a halting
breakpoint fires, then prints the state report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logs, _ := cmd.Flags().GetStringSlice("logs")
		query, _ := cmd.Flags().GetString("query")
		export, _ := cmd.Flags().GetBool("export")
		quiet, _ := cmd.Flags().GetBool("quiet")

		s, _, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return cli.Run(cmd.Context(), s, cmd.OutOrStdout(), cli.RunOptions{
			Logs:   logs,
			Query:  query,
			Export: export,
			Quiet:  quiet,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSlice("logs", nil, "Entities whose log streams are printed after the report")
	runCmd.Flags().StringP("query", "q", "", "Only print log events containing this text")
	runCmd.Flags().Bool("export", false, "Export every captured log stream to the configured archive")
	runCmd.Flags().Bool("quiet", false, "Skip the banner and the report")
}
