package main

import (
	"github.com/aretw0/simscope/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inspection HTTP server",
	Long: `Runs the simulation in the background and exposes inspectors, breakpoints,
traces, logs and stepping control as a JSON API, with breakpoint hits
streamed over Server-Sent Events. Edits to the config file are applied live.

Press Ctrl+C once to pause a running simulation and again to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, path, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if cmd.Flags().Changed("addr") {
			s.Config.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		if err := cli.Serve(cmd.Context(), s, path); err != nil {
			return err
		}
		s.Logger.Info("Simscope Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
