package platform

// Package platform contains OS and external tooling glue: filesystem helpers
// for per-request directories, the supported-source classifier, and the
// yt-dlp engine driven through github.com/lrstanley/go-ytdlp.
