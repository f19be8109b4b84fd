package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/config"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/telegram"
)

var channelCmd = &cobra.Command{
	Use:   "channel-id",
	Short: "Print the numeric id of the configured channel",
	Long:  "Resolves CHANNEL_USERNAME (or an @name CHANNEL_ID) to the numeric id to put into CHANNEL_ID.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		ref, err := settings.Channel()
		if err != nil {
			return err
		}
		if ref.ID != 0 {
			fmt.Println(ref.ID)
			return nil
		}

		api, err := telegram.NewAPI(settings.BotToken)
		if err != nil {
			return fmt.Errorf("authorizing bot: %w", err)
		}
		members := telegram.NewMembership(api, telegram.NewChannelHolder(telegram.Channel{Username: ref.Username}), nil)
		id, err := members.ResolveChannel(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d\n", ref.Username, id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelCmd)
}
