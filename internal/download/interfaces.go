package download

import (
	"context"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

// Engine is the media-fetching library seen as a black box.
type Engine interface {
	// Probe returns metadata without downloading media.
	Probe(ctx context.Context, url string, opts model.FetchOptions) (*model.MediaInfo, error)

	// Fetch downloads media and returns the final info document. An error
	// returned by opts.Progress aborts the transfer and is returned as is.
	Fetch(ctx context.Context, url string, opts model.FetchOptions) (*model.MediaInfo, error)
}

// Fetcher runs one fetch request to completion.
type Fetcher interface {
	Fetch(ctx context.Context, req model.Request) (*model.Result, error)
}
