package session

import (
	"errors"
	"testing"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

func TestEncodeSelection(t *testing.T) {
	data := EncodeSelection("abc123", model.Quality1080p)
	if data != "DL|abc123|1080p" {
		t.Errorf("Expected DL|abc123|1080p, got %s", data)
	}

	choice, err := ParseSelection(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if choice.Key != "abc123" || choice.Quality != model.Quality1080p {
		t.Errorf("Unexpected choice %+v", choice)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		key     string
		quality model.Quality
		wantErr bool
	}{
		{"valid", "DL|k|mp3", "k", model.QualityMP3, false},
		{"unknown quality passes through", "DL|k|4k", "k", model.Quality("4k"), false},
		{"empty quality", "DL|k|", "k", model.Quality(""), false},
		{"missing part", "DL|k", "", "", true},
		{"wrong prefix", "XX|k|mp3", "", "", true},
		{"empty key", "DL||mp3", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, err := ParseSelection(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSelection) {
					t.Errorf("Expected ErrInvalidSelection, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if choice.Key != tt.key || choice.Quality != tt.quality {
				t.Errorf("Expected %s/%s, got %+v", tt.key, tt.quality, choice)
			}
		})
	}
}

func TestIsSelectionPayload(t *testing.T) {
	if !IsSelectionPayload("DL|k|best") {
		t.Error("Expected picker payload to be recognized")
	}
	if IsSelectionPayload("DLX|k|best") || IsSelectionPayload("other") {
		t.Error("Expected foreign payloads to be rejected")
	}
}
