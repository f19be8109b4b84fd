// Package progress turns a high-frequency stream of transfer events into a
// low-frequency stream of user-visible updates.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/platform"
)

// DefaultInterval is the minimum spacing between two rendered updates
const DefaultInterval = 1500 * time.Millisecond

// Formatter renders an event as user-visible text
type Formatter func(ev model.ProgressEvent) string

// Renderer applies a rendered update, e.g. by editing a chat message
type Renderer func(ctx context.Context, text string) error

// Throttle accepts events from any goroutine and hands at most one rendered
// update per interval to the goroutine running Run. Push never blocks.
type Throttle struct {
	format    Formatter
	sometimes *rate.Sometimes
	updates   chan string
	done      chan struct{}
	logger    *slog.Logger

	mu      sync.Mutex
	last    float64
	emitted bool
	closed  bool
	once    sync.Once
}

// New creates a throttle. A non-positive interval uses DefaultInterval and a
// nil formatter uses DefaultFormat.
func New(interval time.Duration, format Formatter, logger *slog.Logger) *Throttle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if format == nil {
		format = DefaultFormat
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Throttle{
		format:    format,
		sometimes: &rate.Sometimes{Interval: interval},
		updates:   make(chan string, 1),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// Push offers an event. Events without a usable total, events outside the
// downloading state, and events that would move progress backwards are dropped.
func (t *Throttle) Push(ev model.ProgressEvent) {
	if ev.Status != model.ProgressStatusDownloading {
		return
	}
	percent, ok := ev.Percent()
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || (t.emitted && percent < t.last) {
		return
	}

	t.sometimes.Do(func() {
		t.last = percent
		t.emitted = true
		t.offer(t.format(ev))
	})
}

// offer replaces any pending update with text. Caller holds t.mu.
func (t *Throttle) offer(text string) {
	select {
	case t.updates <- text:
		return
	default:
	}
	select {
	case <-t.updates:
	default:
	}
	select {
	case t.updates <- text:
	default:
	}
}

// Run applies updates with render until Close is called or ctx ends. Render
// failures are logged and ignored.
func (t *Throttle) Run(ctx context.Context, render Renderer) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-t.updates:
			t.apply(ctx, render, text)
		case <-t.done:
			// Flush an update that raced with Close
			select {
			case text := <-t.updates:
				t.apply(ctx, render, text)
			default:
			}
			return
		}
	}
}

func (t *Throttle) apply(ctx context.Context, render Renderer, text string) {
	if err := render(ctx, text); err != nil {
		t.logger.Debug("progress update failed", "error", err)
	}
}

// Close stops accepting events and lets Run return. It is safe to call more
// than once.
func (t *Throttle) Close() {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
		close(t.done)
	})
}

// DefaultFormat renders percent and transferred/total sizes
func DefaultFormat(ev model.ProgressEvent) string {
	percent, _ := ev.Percent()
	return fmt.Sprintf("Downloading: %.1f%%\n%s / %s",
		percent, platform.FormatBytes(ev.DownloadedBytes), platform.FormatBytes(ev.TotalBytes))
}
