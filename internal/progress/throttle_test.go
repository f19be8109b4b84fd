package progress

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

// recorder collects rendered updates
type recorder struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recorder) render(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return r.err
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func downloading(done, total int64) model.ProgressEvent {
	return model.ProgressEvent{Status: model.ProgressStatusDownloading, DownloadedBytes: done, TotalBytes: total}
}

// runThrottle starts Run and returns a func that closes the throttle and
// waits for Run to return
func runThrottle(th *Throttle, rec *recorder) func() {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		th.Run(context.Background(), rec.render)
	}()
	return func() {
		th.Close()
		<-finished
	}
}

func TestThrottle_BurstEmitsOnce(t *testing.T) {
	th := New(time.Hour, nil, nil)
	rec := &recorder{}
	stop := runThrottle(th, rec)

	for i := int64(1); i <= 50; i++ {
		th.Push(downloading(i, 100))
	}
	stop()

	texts := rec.snapshot()
	if len(texts) != 1 {
		t.Fatalf("Expected 1 update within one interval, got %d", len(texts))
	}
	if !strings.HasPrefix(texts[0], "Downloading: 1.0%") {
		t.Errorf("Expected first event to be rendered, got %q", texts[0])
	}
}

func TestThrottle_EmitsAgainAfterInterval(t *testing.T) {
	th := New(20*time.Millisecond, nil, nil)
	rec := &recorder{}
	stop := runThrottle(th, rec)

	th.Push(downloading(10, 100))
	time.Sleep(60 * time.Millisecond)
	th.Push(downloading(20, 100))
	time.Sleep(20 * time.Millisecond)
	stop()

	if got := len(rec.snapshot()); got != 2 {
		t.Errorf("Expected 2 updates, got %d", got)
	}
}

func TestThrottle_DropsUnusableEvents(t *testing.T) {
	th := New(time.Millisecond, nil, nil)
	rec := &recorder{}
	stop := runThrottle(th, rec)

	th.Push(model.ProgressEvent{Status: model.ProgressStatusDownloading, DownloadedBytes: 10})
	th.Push(model.ProgressEvent{Status: model.ProgressStatusFinished, DownloadedBytes: 10, TotalBytes: 10})
	th.Push(model.ProgressEvent{Status: model.ProgressStatusPostProcessing, DownloadedBytes: 5, TotalBytes: 10})
	stop()

	if got := len(rec.snapshot()); got != 0 {
		t.Errorf("Expected no updates, got %d", got)
	}
}

func TestThrottle_ProgressIsMonotonic(t *testing.T) {
	th := New(time.Millisecond, func(ev model.ProgressEvent) string {
		p, _ := ev.Percent()
		return strings.Repeat("#", int(p))
	}, nil)
	rec := &recorder{}
	stop := runThrottle(th, rec)

	th.Push(downloading(50, 100))
	time.Sleep(5 * time.Millisecond)
	th.Push(downloading(10, 100))
	time.Sleep(5 * time.Millisecond)
	th.Push(downloading(70, 100))
	time.Sleep(5 * time.Millisecond)
	stop()

	last := -1
	for _, text := range rec.snapshot() {
		if len(text) < last {
			t.Errorf("Progress moved backwards: %d after %d", len(text), last)
		}
		last = len(text)
	}
	if last != 70 {
		t.Errorf("Expected final progress 70, got %d", last)
	}
}

func TestThrottle_RenderFailureIsSwallowed(t *testing.T) {
	th := New(time.Millisecond, nil, nil)
	rec := &recorder{err: errors.New("message is not modified")}
	stop := runThrottle(th, rec)

	th.Push(downloading(1, 10))
	time.Sleep(5 * time.Millisecond)
	th.Push(downloading(2, 10))
	time.Sleep(5 * time.Millisecond)
	stop()

	if got := len(rec.snapshot()); got == 0 {
		t.Error("Expected render to be attempted")
	}
}

func TestThrottle_PushAfterCloseIsIgnored(t *testing.T) {
	th := New(time.Millisecond, nil, nil)
	th.Close()
	th.Close()

	th.Push(downloading(1, 10))

	rec := &recorder{}
	th.Run(context.Background(), rec.render)
	if got := len(rec.snapshot()); got != 0 {
		t.Errorf("Expected no updates after close, got %d", got)
	}
}

func TestThrottle_PushNeverBlocks(t *testing.T) {
	th := New(time.Nanosecond, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int64(1); i <= 1000; i++ {
			th.Push(downloading(i, 1000))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked without a consumer")
	}
}

func TestDefaultFormat(t *testing.T) {
	text := DefaultFormat(downloading(512*1024, 1024*1024))
	expected := "Downloading: 50.0%\n512.00 KB / 1.00 MB"
	if text != expected {
		t.Errorf("Expected %q, got %q", expected, text)
	}
}
