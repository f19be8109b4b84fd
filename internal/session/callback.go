package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

// Selection payload layout: DL|<key>|<quality>
const (
	SelectionPrefix    = "DL"
	selectionSeparator = "|"
)

var (
	// ErrInvalidSelection means a payload does not follow the picker layout.
	ErrInvalidSelection = errors.New("invalid selection payload")

	// ErrStaleSelection means the payload key is no longer in the link cache.
	ErrStaleSelection = errors.New("stale selection")
)

// Choice is a decoded picker payload
type Choice struct {
	Key     string
	Quality model.Quality
}

// EncodeSelection builds a picker payload
func EncodeSelection(key string, q model.Quality) string {
	return strings.Join([]string{SelectionPrefix, key, q.String()}, selectionSeparator)
}

// IsSelectionPayload reports whether data carries the picker prefix
func IsSelectionPayload(data string) bool {
	return strings.HasPrefix(data, SelectionPrefix+selectionSeparator)
}

// ParseSelection decodes a picker payload. The quality label is passed through
// as is; unknown labels resolve to the best format later.
func ParseSelection(data string) (Choice, error) {
	parts := strings.SplitN(data, selectionSeparator, 3)
	if len(parts) != 3 || parts[0] != SelectionPrefix || parts[1] == "" {
		return Choice{}, fmt.Errorf("%w: %q", ErrInvalidSelection, data)
	}
	return Choice{Key: parts[1], Quality: model.Quality(parts[2])}, nil
}
