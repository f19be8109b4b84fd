package download

import "github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"

// EstimateSize returns the expected byte size of the media: the top-level
// filesize, else filesize_approx, else the largest size declared by any
// format. Zero means unknown.
func EstimateSize(info *model.MediaInfo) int64 {
	if info == nil {
		return 0
	}
	if info.Filesize > 0 {
		return info.Filesize
	}
	if info.FilesizeApprox > 0 {
		return info.FilesizeApprox
	}

	var largest int64
	for _, f := range info.Formats {
		size := f.Filesize
		if size <= 0 {
			size = f.FilesizeApprox
		}
		if size > largest {
			largest = size
		}
	}
	return largest
}
