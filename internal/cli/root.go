// Package cli wires the configuration, the download stack and the chat
// transport into cobra commands.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "savebot",
	Short:        "Telegram bot that saves YouTube and Instagram media for channel members",
	Long:         "savebot answers links with a quality picker and sends the downloaded media back.\nRunning it without a subcommand starts the bot.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (environment overrides it)")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}
