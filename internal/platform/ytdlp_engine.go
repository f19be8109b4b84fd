package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

// Engine defaults
const (
	DefaultProgressFrequency = 250 * time.Millisecond
	DefaultInstallTimeout    = 2 * time.Minute
)

// YTDLPEngine drives the yt-dlp executable through go-ytdlp. It satisfies the
// probe/fetch contract of the download package.
type YTDLPEngine struct {
	executable        string
	progressFrequency time.Duration
	logger            *slog.Logger
}

// NewYTDLPEngine creates an engine. An empty executable uses yt-dlp from PATH
// or the copy managed by go-ytdlp.
func NewYTDLPEngine(executable string, logger *slog.Logger) *YTDLPEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLPEngine{
		executable:        executable,
		progressFrequency: DefaultProgressFrequency,
		logger:            logger.With("component", "ytdlp"),
	}
}

// InstallYTDLP downloads yt-dlp when it is missing or outdated
func InstallYTDLP(ctx context.Context, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultInstallTimeout)
	defer cancel()

	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	if logger != nil {
		logger.Info("yt-dlp is installed")
	}
	return nil
}

// Probe fetches metadata only
func (e *YTDLPEngine) Probe(ctx context.Context, url string, opts model.FetchOptions) (*model.MediaInfo, error) {
	cmd := e.command(opts).
		SkipDownload().
		DumpSingleJSON()

	start := time.Now()
	res, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, runError("probe", res, err)
	}
	e.logger.Debug("probe finished", "url", url, "took", time.Since(start))

	return ParseMediaInfo(res.Stdout)
}

// Fetch downloads the media and returns the final info document. When the
// progress hook returns an error the transfer is aborted and that error is
// returned unchanged.
func (e *YTDLPEngine) Fetch(ctx context.Context, url string, opts model.FetchOptions) (*model.MediaInfo, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	cmd := e.command(opts).
		NoSimulate().
		DumpSingleJSON()

	if opts.Progress != nil {
		hook := opts.Progress
		cmd.ProgressFunc(e.progressFrequency, func(update ytdlp.ProgressUpdate) {
			if ctx.Err() != nil {
				return
			}
			if err := hook(progressEvent(update)); err != nil {
				cancel(err)
			}
		})
	}

	start := time.Now()
	res, err := cmd.Run(ctx, url)

	// A hook abort takes precedence over whatever the killed process reported
	if cause := context.Cause(ctx); cause != nil && !isContextError(cause) {
		return nil, cause
	}
	if err != nil {
		return nil, runError("fetch", res, err)
	}
	e.logger.Debug("fetch finished", "url", url, "took", time.Since(start))

	return ParseMediaInfo(res.Stdout)
}

// command builds the shared option set for probe and fetch calls
func (e *YTDLPEngine) command(opts model.FetchOptions) *ytdlp.Command {
	cmd := ytdlp.New()
	if e.executable != "" {
		cmd.SetExecutable(e.executable)
	}

	if opts.Format != "" {
		cmd.Format(opts.Format)
	}
	if opts.OutputTemplate != "" {
		cmd.Output(opts.OutputTemplate)
	}
	if opts.NoPlaylist {
		cmd.NoPlaylist()
	}
	if opts.ExtractAudio {
		cmd.ExtractAudio()
		if opts.AudioCodec != "" {
			cmd.AudioFormat(opts.AudioCodec)
		}
		if opts.AudioQuality != "" {
			cmd.AudioQuality(opts.AudioQuality)
		}
	}
	if opts.MergeOutputFormat != "" {
		cmd.MergeOutputFormat(opts.MergeOutputFormat)
	}

	if opts.UserAgent != "" {
		cmd.AddHeaders("User-Agent:" + opts.UserAgent)
	}
	if opts.CookieFile != "" {
		cmd.Cookies(opts.CookieFile)
	}
	if opts.ExtractorArgs != "" {
		cmd.ExtractorArgs(opts.ExtractorArgs)
	}

	if opts.ConcurrentFragments > 0 {
		cmd.ConcurrentFragments(opts.ConcurrentFragments)
	}
	if opts.Retries > 0 {
		cmd.Retries(strconv.Itoa(opts.Retries))
	}
	if opts.FragmentRetries > 0 {
		cmd.FragmentRetries(strconv.Itoa(opts.FragmentRetries))
	}
	if opts.SocketTimeout > 0 {
		cmd.SocketTimeout(opts.SocketTimeout.Seconds())
	}

	return cmd.ForceOverwrites()
}

// progressEvent converts a go-ytdlp update to the domain event
func progressEvent(update ytdlp.ProgressUpdate) model.ProgressEvent {
	return model.ProgressEvent{
		Status:          model.ProgressStatus(update.Status),
		TotalBytes:      int64(update.TotalBytes),
		DownloadedBytes: int64(update.DownloadedBytes),
	}
}

// runError wraps a failed run with the most useful line yt-dlp printed
func runError(stage string, res *ytdlp.Result, err error) error {
	if res != nil {
		if msg := lastErrorLine(res.Stderr); msg != "" {
			return fmt.Errorf("yt-dlp %s failed: %s: %w", stage, msg, err)
		}
	}
	return fmt.Errorf("yt-dlp %s failed: %w", stage, err)
}

// lastErrorLine returns the last "ERROR:" line from yt-dlp stderr
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if msg, ok := strings.CutPrefix(line, "ERROR:"); ok {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
