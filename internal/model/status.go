package model

// ProgressStatus represents the state reported by a progress event
type ProgressStatus string

const (
	// ProgressStatusStarting means the transfer is being prepared
	ProgressStatusStarting ProgressStatus = "starting"

	// ProgressStatusDownloading means bytes are being transferred
	ProgressStatusDownloading ProgressStatus = "downloading"

	// ProgressStatusPostProcessing means the transfer ended and post-processors run
	ProgressStatusPostProcessing ProgressStatus = "post_processing"

	// ProgressStatusFinished means the transfer completed
	ProgressStatusFinished ProgressStatus = "finished"

	// ProgressStatusError means the transfer failed
	ProgressStatusError ProgressStatus = "error"
)

// String returns the string representation of ProgressStatus
func (ps ProgressStatus) String() string {
	return string(ps)
}

// ProgressEvent is a transient snapshot of a running transfer
type ProgressEvent struct {
	Status          ProgressStatus
	TotalBytes      int64 // 0 when the total is unknown
	DownloadedBytes int64
}

// Percent returns the completed share in the 0..100 range. The second value is
// false when the total is unknown.
func (e ProgressEvent) Percent() (float64, bool) {
	if e.TotalBytes <= 0 {
		return 0, false
	}
	p := float64(e.DownloadedBytes) / float64(e.TotalBytes) * 100
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p, true
}
