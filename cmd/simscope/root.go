package main

import (
	"fmt"
	"os"

	"github.com/aretw0/simscope/internal/cli"
	"github.com/aretw0/simscope/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simscope",
	Short: "Simscope inspects discrete-event simulations while they run",
	Long: `Simscope attaches to a discrete-event simulation and lets you watch entity
state, break when a field changes, plot numeric fields over simulated time
and search the log stream of every entity.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the simscope YAML config")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error); overrides the config")
}

// loadConfig reads the config named by --config and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, path, nil
}

// newSession loads the config and builds the inspection stack with
// application logs on stderr.
func newSession(cmd *cobra.Command) (*cli.Session, string, error) {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	s, err := cli.NewSession(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, "", fmt.Errorf("error initializing simscope: %w", err)
	}
	s.Install()
	return s, path, nil
}
