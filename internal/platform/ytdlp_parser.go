package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

// ErrNoInfoDocument is returned when yt-dlp output holds no JSON document
var ErrNoInfoDocument = errors.New("no info document in yt-dlp output")

// infoDocument mirrors the subset of the yt-dlp info JSON the bot relies on.
// Sizes are decoded as float64 because yt-dlp emits approximations as floats.
type infoDocument struct {
	Title          *string      `json:"title"`
	Ext            *string      `json:"ext"`
	Filename       *string      `json:"_filename"`
	Filesize       *float64     `json:"filesize"`
	FilesizeApprox *float64     `json:"filesize_approx"`
	Formats        []formatDoc  `json:"formats"`
	Requested      []requestDoc `json:"requested_downloads"`
}

type formatDoc struct {
	FormatID       string   `json:"format_id"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
}

type requestDoc struct {
	Filepath *string  `json:"filepath"`
	Filename *string  `json:"_filename"`
	Filesize *float64 `json:"filesize"`
	Title    *string  `json:"title"`
	Ext      *string  `json:"ext"`
}

// ParseMediaInfo decodes the info document printed by --dump-single-json. The
// last line starting with '{' wins; progress and log lines are ignored.
func ParseMediaInfo(output string) (*model.MediaInfo, error) {
	line := lastJSONLine(output)
	if line == "" {
		return nil, ErrNoInfoDocument
	}

	var doc infoDocument
	if err := json.Unmarshal([]byte(line), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode info document: %w", err)
	}

	info := &model.MediaInfo{
		Title:          deref(doc.Title),
		Ext:            deref(doc.Ext),
		Filename:       deref(doc.Filename),
		Filesize:       toBytes(doc.Filesize),
		FilesizeApprox: toBytes(doc.FilesizeApprox),
	}

	for _, f := range doc.Formats {
		info.Formats = append(info.Formats, model.FormatInfo{
			ID:             f.FormatID,
			Filesize:       toBytes(f.Filesize),
			FilesizeApprox: toBytes(f.FilesizeApprox),
		})
	}

	for _, r := range doc.Requested {
		path := deref(r.Filepath)
		if path == "" {
			path = deref(r.Filename)
		}
		info.RequestedDownloads = append(info.RequestedDownloads, model.DownloadedFile{
			Path:  path,
			Title: deref(r.Title),
			Ext:   deref(r.Ext),
			Size:  toBytes(r.Filesize),
		})
	}

	return info, nil
}

// lastJSONLine returns the last non-empty line that starts with '{'
func lastJSONLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "{") {
			return line
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toBytes(v *float64) int64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return int64(*v)
}
