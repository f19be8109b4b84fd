package download

import (
	"errors"
	"fmt"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/platform"
)

var (
	// ErrUnsupportedSource means the URL is outside the supported families.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrTooLarge means the media exceeds the size ceiling.
	ErrTooLarge = errors.New("file too large")

	// ErrFetchFailed means the engine failed for any other reason.
	ErrFetchFailed = errors.New("download failed")
)

// SizeError reports a size ceiling violation. It matches ErrTooLarge.
type SizeError struct {
	Size      int64
	Limit     int64
	Estimated bool   // rejected from the probe estimate, nothing transferred
	Path      string // set when the file was fully written
}

func (e *SizeError) Error() string {
	kind := "size"
	if e.Estimated {
		kind = "estimated size"
	}
	return fmt.Sprintf("%s: %s %s exceeds limit %s", ErrTooLarge, kind,
		platform.FormatBytes(e.Size), platform.FormatBytes(e.Limit))
}

// Is reports whether target is ErrTooLarge
func (e *SizeError) Is(target error) bool {
	return target == ErrTooLarge
}

// FetchError wraps an engine failure. It matches ErrFetchFailed.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return ErrFetchFailed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrFetchFailed, e.Cause)
}

// Is reports whether target is ErrFetchFailed
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// classify keeps typed errors and wraps everything else as a fetch failure
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnsupportedSource) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrFetchFailed) {
		return err
	}
	return &FetchError{Cause: err}
}
