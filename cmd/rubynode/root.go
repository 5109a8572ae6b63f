package main

import (
	"github.com/spf13/cobra"

	"github.com/nohros/nohrosruby/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "rubynode",
	Short:         "nohros ruby service node",
	Long:          `rubynode routes fact-addressed messages between the services registered on this host.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./ruby.yaml, ./configs/ruby.yaml or ~/.ruby/ruby.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the services database")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("registry", "", "services database path, relative to the data dir")
}

// loadConfig merges the config file, environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configPath, cmd.Flags())
}
