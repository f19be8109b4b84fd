package download

// Package download implements the fetch pipeline on top of a probe/fetch
// engine (yt-dlp via github.com/lrstanley/go-ytdlp in production). It enforces
// the size ceiling before, during and after the transfer, classifies failures
// into typed errors, and bounds concurrent work with a worker pool.
