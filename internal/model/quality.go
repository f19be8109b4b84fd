package model

import (
	"fmt"
	"strings"
)

// Quality is a user-facing quality/format label
type Quality string

const (
	Quality360p  Quality = "360p"
	Quality480p  Quality = "480p"
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	QualityBest  Quality = "best"
	QualityMP3   Quality = "mp3"
)

// Audio extraction defaults applied to QualityMP3
const (
	AudioCodecMP3       = "mp3"
	AudioQualityDefault = "192K"
	MergeFormatMP4      = "mp4"
)

// Qualities lists the labels in the order they are offered to the user
var Qualities = []Quality{
	Quality360p,
	Quality480p,
	Quality720p,
	Quality1080p,
	QualityBest,
	QualityMP3,
}

// FormatSelection is the fetch-library directive set for a quality
type FormatSelection struct {
	Selector     string
	ExtractAudio bool
	AudioCodec   string
	AudioQuality string
	MergeFormat  string // empty when audio is extracted
}

const (
	cappedSelectorTemplate = "best[ext=mp4][height<=%[1]d][acodec!=none][vcodec!=none]/bestvideo[height<=%[1]d]+bestaudio/best"
	selector1080p          = "bestvideo[height<=1080]+bestaudio/best"
	selectorBest           = "bestvideo+bestaudio/best"
	selectorAudio          = "bestaudio/best"
)

// ParseQuality validates a label. Matching is case-insensitive.
func ParseQuality(s string) (Quality, bool) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Qualities {
		if q == known {
			return q, true
		}
	}
	return "", false
}

// String returns the string representation of Quality
func (q Quality) String() string {
	return string(q)
}

// Label returns the button text for the quality
func (q Quality) Label() string {
	return strings.ToUpper(string(q))
}

// IsAudio returns true if the quality produces an audio-only file
func (q Quality) IsAudio() bool {
	return q == QualityMP3
}

// Resolve maps the quality to format directives. Unknown labels resolve to the
// best available selector.
func (q Quality) Resolve() FormatSelection {
	switch q {
	case Quality360p:
		return videoSelection(fmt.Sprintf(cappedSelectorTemplate, 360))
	case Quality480p:
		return videoSelection(fmt.Sprintf(cappedSelectorTemplate, 480))
	case Quality720p:
		return videoSelection(fmt.Sprintf(cappedSelectorTemplate, 720))
	case Quality1080p:
		return videoSelection(selector1080p)
	case QualityMP3:
		return FormatSelection{
			Selector:     selectorAudio,
			ExtractAudio: true,
			AudioCodec:   AudioCodecMP3,
			AudioQuality: AudioQualityDefault,
		}
	default:
		return videoSelection(selectorBest)
	}
}

func videoSelection(selector string) FormatSelection {
	return FormatSelection{
		Selector:    selector,
		MergeFormat: MergeFormatMP4,
	}
}
