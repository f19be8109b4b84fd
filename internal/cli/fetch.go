package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/config"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/download"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/platform"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/progress"
)

var (
	fetchQuality  string
	fetchOutput   string
	fetchMaxBytes int64
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download one link from the command line, as the bot would",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchQuality, "quality", "q", string(model.QualityBest), "quality: 360p, 480p, 720p, 1080p, best, mp3")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", ".", "output directory")
	fetchCmd.Flags().Int64Var(&fetchMaxBytes, "max-bytes", 0, "size ceiling in bytes (default MAX_FILE_BYTES)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, closer, err := config.SetupLogging(settings.LogLevel, "")
	if err != nil {
		return err
	}
	defer closer.Close()

	quality, ok := model.ParseQuality(fetchQuality)
	if !ok {
		return fmt.Errorf("unknown quality %q", fetchQuality)
	}

	url := platform.Normalize(args[0])
	if !platform.IsSupported(url) {
		return fmt.Errorf("%w: %s", download.ErrUnsupportedSource, url)
	}

	maxBytes := fetchMaxBytes
	if maxBytes <= 0 {
		maxBytes = settings.MaxFileBytes
	}

	output, err := filepath.Abs(fetchOutput)
	if err != nil {
		return err
	}
	if err := platform.CreateDirectoryIfNotExists(output); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	service := download.NewService(platform.NewYTDLPEngine(settings.YTDLPPath, logger), settings.Tuning(), logger)

	throttle := progress.New(settings.ProgressInterval, progress.DefaultFormat, logger)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		throttle.Run(ctx, func(ctx context.Context, text string) error {
			_, err := fmt.Fprintln(os.Stderr, color.CyanString(strings.ReplaceAll(text, "\n", "  ")))
			return err
		})
	}()

	req := model.Request{
		ID:         "cli-" + uuid.New().String(),
		URL:        url,
		Quality:    quality,
		Dir:        filepath.Join(output, platform.RequestDirName(0, time.Now())),
		MaxBytes:   maxBytes,
		Progress:   throttle.Push,
		UserAgent:  settings.YTDLPUserAgent,
		CookieFile: settings.YTDLPCookies,
	}
	defer platform.RemovePath(req.Dir)

	fmt.Fprintf(os.Stderr, "%s %s (%s)\n", color.New(color.Bold).Sprint("Fetching"), url, quality.Label())
	result, err := service.Fetch(ctx, req)
	throttle.Close()
	<-rendered
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Failed: %v", err))
		return err
	}

	target := filepath.Join(output, result.GetFileName())
	if err := os.Rename(result.Path, target); err != nil {
		return fmt.Errorf("moving result: %w", err)
	}

	fmt.Fprintln(os.Stderr, color.GreenString("Saved %s (%s)", target, platform.FormatBytes(result.Size)))
	return nil
}
