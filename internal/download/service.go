package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/platform"
)

// Output naming inside the per-request directory
const (
	OutputTemplateName = "video.%(ext)s"
)

// Transport defaults
const (
	DefaultConcurrentFragments = 4
	DefaultRetries             = 10
	DefaultFragmentRetries     = 10
	DefaultSocketTimeout       = 30 * time.Second
)

// Tuning holds transport settings passed to the engine on every call
type Tuning struct {
	ConcurrentFragments int
	Retries             int
	FragmentRetries     int
	SocketTimeout       time.Duration
	ExtractorArgs       string
}

// DefaultTuning returns the transport defaults
func DefaultTuning() Tuning {
	return Tuning{
		ConcurrentFragments: DefaultConcurrentFragments,
		Retries:             DefaultRetries,
		FragmentRetries:     DefaultFragmentRetries,
		SocketTimeout:       DefaultSocketTimeout,
	}
}

// Service orchestrates a single fetch: classification, estimation, transfer,
// and the final size check.
type Service struct {
	engine Engine
	tuning Tuning
	logger *slog.Logger
}

// NewService creates a new download service
func NewService(engine Engine, tuning Tuning, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine: engine,
		tuning: tuning,
		logger: logger.With("component", "download"),
	}
}

// Fetch downloads req.URL into req.Dir. Errors match ErrUnsupportedSource,
// ErrTooLarge or ErrFetchFailed. A returned result never exceeds req.MaxBytes.
func (s *Service) Fetch(ctx context.Context, req model.Request) (*model.Result, error) {
	if req.ID == "" {
		req.ID = generateRequestID()
	}
	log := s.logger.With("request_id", req.ID, "url", req.URL, "quality", req.Quality)

	if !platform.IsSupported(req.URL) {
		return nil, ErrUnsupportedSource
	}

	if err := platform.CreateDirectoryIfNotExists(req.Dir); err != nil {
		return nil, &FetchError{Cause: fmt.Errorf("failed to create %s: %w", req.Dir, err)}
	}

	opts := s.buildOptions(req)

	info, err := s.engine.Probe(ctx, req.URL, opts)
	if err != nil {
		log.Warn("probe failed", "error", err)
		return nil, classify(err)
	}

	estimate := EstimateSize(info)
	log.Info("probe finished", "title", info.Title, "estimate", estimate)
	if req.MaxBytes > 0 && estimate > req.MaxBytes {
		return nil, &SizeError{Size: estimate, Limit: req.MaxBytes, Estimated: true}
	}

	start := time.Now()
	info, err = s.engine.Fetch(ctx, req.URL, opts)
	if err != nil {
		log.Warn("fetch failed", "error", err)
		return nil, classify(err)
	}

	result, err := resultFromInfo(info, filepath.Join(req.Dir, OutputTemplateName))
	if err != nil {
		return nil, classify(err)
	}

	if req.MaxBytes > 0 && result.Size > req.MaxBytes {
		return nil, &SizeError{Size: result.Size, Limit: req.MaxBytes, Path: result.Path}
	}

	log.Info("fetch finished", "path", result.Path, "size", result.Size, "took", time.Since(start))
	return result, nil
}

// buildOptions assembles the engine options for a request
func (s *Service) buildOptions(req model.Request) model.FetchOptions {
	sel := req.Quality.Resolve()

	return model.FetchOptions{
		Format:            sel.Selector,
		OutputTemplate:    filepath.Join(req.Dir, OutputTemplateName),
		NoPlaylist:        true,
		ExtractAudio:      sel.ExtractAudio,
		AudioCodec:        sel.AudioCodec,
		AudioQuality:      sel.AudioQuality,
		MergeOutputFormat: sel.MergeFormat,

		UserAgent:     req.UserAgent,
		CookieFile:    req.CookieFile,
		ExtractorArgs: s.tuning.ExtractorArgs,

		ConcurrentFragments: s.tuning.ConcurrentFragments,
		Retries:             s.tuning.Retries,
		FragmentRetries:     s.tuning.FragmentRetries,
		SocketTimeout:       s.tuning.SocketTimeout,

		Progress: sizeGuard(req.Progress, req.MaxBytes),
	}
}

// sizeGuard forwards every event to sink and aborts once a reported total
// exceeds limit
func sizeGuard(sink model.ProgressSink, limit int64) model.ProgressHook {
	return func(ev model.ProgressEvent) error {
		if sink != nil {
			sink(ev)
		}
		if limit > 0 && ev.TotalBytes > limit {
			return &SizeError{Size: ev.TotalBytes, Limit: limit}
		}
		return nil
	}
}

// resultFromInfo derives the produced file from the final info document. The
// first requested download wins; otherwise the implied output filename is used.
func resultFromInfo(info *model.MediaInfo, outputTemplate string) (*model.Result, error) {
	if info == nil {
		return nil, fmt.Errorf("engine returned no info")
	}

	if len(info.RequestedDownloads) > 0 && info.RequestedDownloads[0].Path != "" {
		d := info.RequestedDownloads[0]
		path, err := platform.FindFileWithFallback(d.Path)
		if err != nil {
			return nil, err
		}
		size := d.Size
		if size <= 0 || path != d.Path {
			if size, err = platform.FileSize(path); err != nil {
				return nil, err
			}
		}
		return &model.Result{
			Path:  path,
			Title: firstNonEmpty(d.Title, info.Title, stem(path)),
			Ext:   firstNonEmpty(extOf(path), d.Ext),
			Size:  size,
		}, nil
	}

	implied := info.Filename
	if implied == "" {
		implied = strings.Replace(outputTemplate, "%(ext)s", firstNonEmpty(info.Ext, model.MergeFormatMP4), 1)
	}
	path, err := platform.FindFileWithFallback(implied)
	if err != nil {
		return nil, err
	}
	size, err := platform.FileSize(path)
	if err != nil {
		return nil, err
	}
	return &model.Result{
		Path:  path,
		Title: firstNonEmpty(info.Title, stem(path)),
		Ext:   extOf(path),
		Size:  size,
	}, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return "req-" + uuid.New().String()
}
