package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/download"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/platform"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/progress"
)

// Commands handled by the coordinator
const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandDownload = "download"
)

// maxCaptionTitleRunes keeps captions well under the chat caption limit
const maxCaptionTitleRunes = 200

// Options configures a Coordinator
type Options struct {
	DownloadRoot     string
	MaxFileBytes     int64
	UserAgent        string
	CookieFile       string
	ProgressInterval time.Duration
	CaptionSignature string
	ChannelName      string // "@name" shown in the join prompt, optional
}

// Coordinator drives chat interactions. Handlers are safe to call from
// concurrent goroutines; each request owns its directory exclusively.
type Coordinator struct {
	messenger Messenger
	members   MembershipChecker
	fetcher   download.Fetcher
	links     *LinkCache
	texts     *Localization
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewCoordinator creates a coordinator
func NewCoordinator(messenger Messenger, members MembershipChecker, fetcher download.Fetcher,
	links *LinkCache, texts *Localization, opts Options, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if links == nil {
		links = NewLinkCache(0, 0)
	}
	if texts == nil {
		texts = NewLocalization()
	}
	return &Coordinator{
		messenger: messenger,
		members:   members,
		fetcher:   fetcher,
		links:     links,
		texts:     texts,
		opts:      opts,
		logger:    logger.With("component", "session"),
		now:       time.Now,
	}
}

// HandleMessage processes an inbound message or command
func (c *Coordinator) HandleMessage(ctx context.Context, msg Message) {
	log := c.logger.With("chat_id", msg.ChatID, "user_id", msg.UserID)
	defer c.recoverHandler(log)

	switch msg.Command {
	case CommandStart, CommandHelp:
		c.send(ctx, log, msg.ChatID, c.texts.GetText(KeyGreeting))
		return
	case CommandDownload:
		url := strings.TrimSpace(msg.Args)
		if url == "" {
			c.send(ctx, log, msg.ChatID, c.texts.GetText(KeyAskLink))
			return
		}
		c.promptForQuality(ctx, log, msg, url)
		c.bestEffort(log, "delete user message", c.messenger.DeleteMessage(ctx, msg.Ref()))
		return
	case "":
	default:
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	url := ExtractURL(msg)
	if url == "" {
		c.send(ctx, log, msg.ChatID, c.texts.GetText(KeyAskSupportedLink))
		return
	}

	c.promptForQuality(ctx, log, msg, url)
	c.bestEffort(log, "delete user message", c.messenger.DeleteMessage(ctx, msg.Ref()))
}

// ExtractURL returns the first link of a message: structured annotations
// first, then a scan of the raw text
func ExtractURL(msg Message) string {
	for _, link := range msg.Links {
		if link = strings.TrimSpace(link); link != "" {
			return link
		}
	}
	return platform.FindURL(msg.Text)
}

// promptForQuality validates the link, gates on membership and sends the picker
func (c *Coordinator) promptForQuality(ctx context.Context, log *slog.Logger, msg Message, rawURL string) {
	url := platform.Normalize(rawURL)
	if !platform.IsSupported(url) {
		log.Info("rejected unsupported link", "url", url)
		c.send(ctx, log, msg.ChatID, c.texts.GetText(KeyOnlySupported))
		return
	}

	if !c.isMember(ctx, log, msg.UserID) {
		c.send(ctx, log, msg.ChatID, c.channelPrompt())
		return
	}

	key := c.links.Put(url)
	log.Debug("link cached", "key", key, "cached_links", c.links.Len())
	buttons := make([]Button, 0, len(model.Qualities))
	for _, q := range model.Qualities {
		buttons = append(buttons, Button{Text: q.Label(), Data: EncodeSelection(key, q)})
	}

	if _, err := c.messenger.SendPicker(ctx, msg.ChatID, c.texts.GetText(KeyChooseQuality), buttons); err != nil {
		log.Warn("failed to send quality picker", "error", err)
	}
}

// HandleSelection processes a picker tap and runs the download
func (c *Coordinator) HandleSelection(ctx context.Context, sel Selection) {
	requestID := generateRequestID()
	log := c.logger.With("request_id", requestID, "user_id", sel.UserID)
	defer c.recoverHandler(log)

	choice, err := ParseSelection(sel.Data)
	if err != nil {
		log.Info("rejected selection", "error", err)
		c.bestEffort(log, "answer selection", c.messenger.AnswerSelection(ctx, sel.ID, c.texts.GetText(KeyInvalidRequest), true))
		return
	}

	url, ok := c.links.Get(choice.Key)
	if !ok {
		log.Info("rejected selection", "error", ErrStaleSelection, "key", choice.Key)
		c.bestEffort(log, "answer selection", c.messenger.AnswerSelection(ctx, sel.ID, c.texts.GetText(KeyLinkExpired), true))
		return
	}

	c.bestEffort(log, "answer selection", c.messenger.AnswerSelection(ctx, sel.ID, "", false))
	c.bestEffort(log, "mark picker", c.messenger.EditText(ctx, sel.Message, c.texts.Format(KeySelected, choice.Quality.Label())))

	if !c.isMember(ctx, log, sel.UserID) {
		c.send(ctx, log, sel.Message.ChatID, c.channelPrompt())
		return
	}

	progressRef, err := c.messenger.SendText(ctx, sel.Message.ChatID, c.texts.GetText(KeyDownloading))
	if err != nil {
		log.Error("failed to send progress message", "error", err)
		return
	}

	req := model.Request{
		ID:         requestID,
		URL:        url,
		Quality:    choice.Quality,
		MaxBytes:   c.opts.MaxFileBytes,
		UserAgent:  c.opts.UserAgent,
		CookieFile: c.opts.CookieFile,
	}
	c.runDownload(ctx, log, sel, req, progressRef)
}

// runDownload fetches into a fresh request directory and delivers the result.
// The directory is removed on every exit path, including panics.
func (c *Coordinator) runDownload(ctx context.Context, log *slog.Logger, sel Selection, req model.Request, progressRef MessageRef) {
	req.Dir = filepath.Join(c.opts.DownloadRoot, platform.RequestDirName(sel.UserID, c.now()))
	defer c.cleanup(log, req.Dir)

	defer func() {
		if r := recover(); r != nil {
			log.Error("download panicked", "panic", r, "stack", string(debug.Stack()))
			c.bestEffort(log, "report failure", c.messenger.EditText(ctx, progressRef, c.texts.GetText(KeyUnexpected)))
		}
	}()

	throttle := progress.New(c.opts.ProgressInterval, c.formatProgress, log)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		throttle.Run(ctx, func(ctx context.Context, text string) error {
			return c.messenger.EditText(ctx, progressRef, text)
		})
	}()

	var stopOnce sync.Once
	stopProgress := func() {
		stopOnce.Do(func() {
			throttle.Close()
			<-rendered
		})
	}
	defer stopProgress()

	req.Progress = throttle.Push
	log.Info("download requested", "url", req.URL, "quality", req.Quality, "dir", req.Dir)
	result, err := c.fetcher.Fetch(ctx, req)
	stopProgress()

	if err != nil {
		c.reportFailure(ctx, log, progressRef, err)
		return
	}

	if c.opts.MaxFileBytes > 0 && result.Size > c.opts.MaxFileBytes {
		log.Warn("result exceeds limit", "size", result.Size, "limit", c.opts.MaxFileBytes)
		c.bestEffort(log, "report failure", c.messenger.EditText(ctx, progressRef, c.texts.GetText(KeyTooLargeForChat)))
		return
	}

	c.deliver(ctx, log, sel, req.URL, result, progressRef)
}

// deliver sends the file to the requesting user and removes the progress message
func (c *Coordinator) deliver(ctx context.Context, log *slog.Logger, sel Selection, url string, result *model.Result, progressRef MessageRef) {
	media := Media{
		Kind:     MediaVideo,
		Path:     result.Path,
		FileName: result.GetFileName(),
		Caption:  c.caption(result.GetDisplayTitle(), url),
	}
	if result.IsAudio() {
		media.Kind = MediaAudio
	}

	if err := c.messenger.SendMedia(ctx, sel.UserID, media); err != nil {
		log.Error("failed to send media", "path", result.Path, "error", err)
		c.bestEffort(log, "report failure", c.messenger.EditText(ctx, progressRef, c.texts.GetText(KeySendFailed)))
		return
	}

	log.Info("media delivered", "size", result.Size, "ext", result.Ext)
	c.bestEffort(log, "delete progress message", c.messenger.DeleteMessage(ctx, progressRef))
}

// reportFailure maps a fetch error to exactly one user-visible message
func (c *Coordinator) reportFailure(ctx context.Context, log *slog.Logger, progressRef MessageRef, err error) {
	var text string
	switch {
	case errors.Is(err, download.ErrUnsupportedSource):
		log.Info("download rejected", "error", err)
		text = c.texts.GetText(KeyUnsupported)
	case errors.Is(err, download.ErrTooLarge):
		log.Info("download rejected", "error", err)
		text = c.texts.Format(KeyTooLarge, platform.FormatBytes(c.opts.MaxFileBytes), err.Error())
	case errors.Is(err, download.ErrFetchFailed):
		log.Warn("download failed", "error", err)
		detail := err.Error()
		var fetchErr *download.FetchError
		if errors.As(err, &fetchErr) && fetchErr.Cause != nil {
			detail = fetchErr.Cause.Error()
		}
		text = c.texts.Format(KeyFetchFailed, detail)
	default:
		log.Error("download failed unexpectedly", "error", err)
		text = c.texts.GetText(KeyUnexpected)
	}

	c.bestEffort(log, "report failure", c.messenger.EditText(ctx, progressRef, text))
}

func (c *Coordinator) formatProgress(ev model.ProgressEvent) string {
	percent, _ := ev.Percent()
	return c.texts.Format(KeyProgress, percent,
		platform.FormatBytes(ev.DownloadedBytes), platform.FormatBytes(ev.TotalBytes))
}

func (c *Coordinator) caption(title, url string) string {
	if runes := []rune(title); len(runes) > maxCaptionTitleRunes {
		title = string(runes[:maxCaptionTitleRunes]) + "…"
	}
	caption := c.texts.Format(KeyCaption, title, url)
	if sig := strings.TrimSpace(c.opts.CaptionSignature); sig != "" {
		caption += "\n" + sig
	}
	return caption
}

func (c *Coordinator) channelPrompt() string {
	if c.opts.ChannelName != "" {
		return c.texts.Format(KeyChannelPrompt, c.opts.ChannelName)
	}
	return c.texts.GetText(KeyChannelPromptPlain)
}

// isMember treats any verification failure as "not a member"
func (c *Coordinator) isMember(ctx context.Context, log *slog.Logger, userID int64) bool {
	ok, err := c.members.IsMember(ctx, userID)
	if err != nil {
		log.Warn("membership check failed", "error", err)
		return false
	}
	return ok
}

func (c *Coordinator) send(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if _, err := c.messenger.SendText(ctx, chatID, text); err != nil {
		log.Warn("failed to send message", "error", err)
	}
}

// bestEffort logs and discards the error of a cosmetic operation
func (c *Coordinator) bestEffort(log *slog.Logger, op string, err error) {
	if err != nil {
		log.Debug("best-effort operation failed", "op", op, "error", err)
	}
}

func (c *Coordinator) cleanup(log *slog.Logger, dir string) {
	if err := platform.RemovePath(dir); err != nil {
		log.Warn("failed to remove request directory", "dir", dir, "error", err)
	}
}

func (c *Coordinator) recoverHandler(log *slog.Logger) {
	if r := recover(); r != nil {
		log.Error("handler panicked", "panic", r, "stack", string(debug.Stack()))
	}
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return fmt.Sprintf("req-%s", uuid.New().String())
}
