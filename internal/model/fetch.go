package model

import "time"

// ProgressHook observes progress inside the fetch engine. Returning a non-nil
// error asks the engine to abort the transfer with that error.
type ProgressHook func(ProgressEvent) error

// FetchOptions is the engine-neutral option set for probe and fetch calls
type FetchOptions struct {
	Format            string
	OutputTemplate    string
	NoPlaylist        bool
	ExtractAudio      bool
	AudioCodec        string
	AudioQuality      string
	MergeOutputFormat string

	UserAgent     string
	CookieFile    string
	ExtractorArgs string

	ConcurrentFragments int
	Retries             int
	FragmentRetries     int
	SocketTimeout       time.Duration

	Progress ProgressHook
}

// MediaInfo is the metadata document returned by the engine
type MediaInfo struct {
	Title              string
	Ext                string
	Filename           string // implied output path
	Filesize           int64
	FilesizeApprox     int64
	Formats            []FormatInfo
	RequestedDownloads []DownloadedFile
}

// FormatInfo carries the declared sizes of one available format
type FormatInfo struct {
	ID             string
	Filesize       int64
	FilesizeApprox int64
}

// DownloadedFile describes one file the engine wrote
type DownloadedFile struct {
	Path  string
	Title string
	Ext   string
	Size  int64
}
