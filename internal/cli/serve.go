package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/config"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/download"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/platform"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/session"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot and process updates until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logger, closer, err := config.SetupLogging(settings.LogLevel, settings.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("savebot starting", "version", cmd.Root().Version, "download_path", settings.DownloadPath,
		"max_parallel", settings.MaxParallelDownloads, "max_file_bytes", settings.MaxFileBytes)

	if err := prepareDownloadRoot(settings, logger); err != nil {
		return err
	}
	if settings.YTDLPAutoInstall && settings.YTDLPPath == "" {
		if err := platform.InstallYTDLP(ctx, logger); err != nil {
			return err
		}
	}

	engine := platform.NewYTDLPEngine(settings.YTDLPPath, logger)
	service := download.NewService(engine, settings.Tuning(), logger)
	pool := download.NewPool(service, settings.MaxParallelDownloads, logger)
	logger.Info("worker pool ready", "workers", pool.Size())

	api, err := telegram.NewAPI(settings.BotToken)
	if err != nil {
		return fmt.Errorf("authorizing bot: %w", err)
	}
	logger.Info("authorized", "bot", api.Self.UserName)

	ref, err := settings.Channel()
	if err != nil {
		return err
	}
	holder := telegram.NewChannelHolder(telegram.Channel{ID: ref.ID, Username: ref.Username})
	members := telegram.NewMembership(api, holder, logger)
	resolveChannel(ctx, members, logger)

	texts := session.NewLocalization()
	texts.SetLanguage(settings.Language)

	bot := telegram.NewBot(api, logger)
	coordinator := session.NewCoordinator(bot, members, pool,
		session.NewLinkCache(settings.LinkCacheSize, settings.LinkCacheTTL),
		texts,
		session.Options{
			DownloadRoot:     settings.DownloadPath,
			MaxFileBytes:     settings.MaxFileBytes,
			UserAgent:        settings.YTDLPUserAgent,
			CookieFile:       settings.YTDLPCookies,
			ProgressInterval: settings.ProgressInterval,
			CaptionSignature: settings.CaptionSignature,
			ChannelName:      ref.Username,
		},
		logger,
	)

	return bot.Run(ctx, coordinator)
}

// prepareDownloadRoot creates the download root and removes request
// directories left behind by a previous run
func prepareDownloadRoot(settings *config.Settings, logger *slog.Logger) error {
	if err := platform.CreateDirectoryIfNotExists(settings.DownloadPath); err != nil {
		return fmt.Errorf("creating download path: %w", err)
	}

	removed, err := platform.SweepRequestDirs(settings.DownloadPath, time.Now().Add(-settings.StaleDirMaxAge))
	if err != nil {
		logger.Warn("failed to sweep stale request directories", "error", err)
	}
	if removed > 0 {
		logger.Info("removed stale request directories", "count", removed)
	}
	return nil
}

// resolveChannel looks up the numeric channel id once. Failure is not fatal:
// membership checks retry the lookup.
func resolveChannel(ctx context.Context, members *telegram.Membership, logger *slog.Logger) {
	id, err := members.ResolveChannel(ctx)
	if err != nil {
		logger.Warn("channel not resolved at startup, will retry on demand", "error", err)
		return
	}
	logger.Info("gating channel", "id", id)
}
