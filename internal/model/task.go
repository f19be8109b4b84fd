package model

import (
	"path/filepath"
	"strings"
)

// ProgressSink receives progress events from a running fetch
type ProgressSink func(ProgressEvent)

// Request describes a single fetch. It is owned by one orchestrator call.
type Request struct {
	ID         string // correlation id for logs
	URL        string
	Quality    Quality
	Dir        string // exclusive destination directory
	MaxBytes   int64
	Progress   ProgressSink // optional
	UserAgent  string
	CookieFile string
}

// Result describes the file produced by a successful fetch
type Result struct {
	Path  string
	Title string
	Ext   string // without leading dot
	Size  int64
}

// audioExtensions lists containers delivered as audio attachments
var audioExtensions = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"aac":  true,
	"opus": true,
	"ogg":  true,
	"oga":  true,
	"flac": true,
	"wav":  true,
}

// IsAudio returns true if the file should be delivered as audio
func (r *Result) IsAudio() bool {
	return audioExtensions[strings.ToLower(strings.TrimPrefix(r.Ext, "."))]
}

// GetDisplayTitle returns title, filename, or "media" in order of preference
func (r *Result) GetDisplayTitle() string {
	// First priority: title (non-URL)
	if t := strings.TrimSpace(r.Title); t != "" && !strings.HasPrefix(t, "http") {
		return t
	}

	// Second priority: filename without extension
	if r.Path != "" {
		name := filepath.Base(r.Path)
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		if name != "" && name != "." && name != string(filepath.Separator) {
			return name
		}
	}

	return "media"
}

// GetFileName returns the attachment file name: the display title with
// characters unsafe for file names replaced, plus the extension.
func (r *Result) GetFileName() string {
	name := strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\n', '\r', '\t':
			return '_'
		}
		return c
	}, r.GetDisplayTitle())

	if runes := []rune(name); len(runes) > maxFileNameRunes {
		name = string(runes[:maxFileNameRunes])
	}

	ext := strings.TrimPrefix(r.Ext, ".")
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(r.Path), ".")
	}
	if ext == "" {
		return name
	}
	return name + "." + ext
}

const maxFileNameRunes = 120
