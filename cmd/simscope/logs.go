package main

import (
	"github.com/aretw0/simscope/internal/cli"
	"github.com/aretw0/simscope/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs <file.jsonl | entity>",
	Short: "Search an exported log stream",
	Long: `Reads a log stream exported by 'run --export' or the HTTP API, either from a
JSON lines file or, given an entity path, from the configured archive, and
prints the events matching the filters.

Field filters match a path of the exported record, for example:
  simscope logs ping --field metadata.level=WARN --field span=pinger{state=1}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		rawFields, _ := cmd.Flags().GetStringArray("field")

		filters, err := cli.ParseFieldFilters(rawFields)
		if err != nil {
			return err
		}

		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		archive, closeArchive, err := cli.BuildArchive(cfg.Export)
		if err != nil {
			return err
		}
		defer closeArchive()

		events, err := cli.ReadLogs(cmd.Context(), archive, args[0])
		if err != nil {
			return err
		}
		events, err = cli.FilterLogs(events, query, filters)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		return tui.WriteLogs(w, cli.Profile(w), events)
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringP("query", "q", "", "Only print events containing this text")
	logsCmd.Flags().StringArray("field", nil, "Only print events whose record path equals a value (path=value, repeatable)")
}
