// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/slacksweep/pkg/configs"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:     "slacksweep",
		Short:   "A service that deletes aged Slack files",
		Version: configs.AppVersion,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./", "config file search path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose debug output")

	registerServeCommand()
	registerSweepCommand()
	registerConfigsCommands()
	registerDBCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
