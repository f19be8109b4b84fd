package model

import "testing"

func TestProgressStatus_String(t *testing.T) {
	status := ProgressStatusDownloading
	expected := "downloading"
	result := status.String()

	if result != expected {
		t.Errorf("ProgressStatus.String() = %s, expected %s", result, expected)
	}
}

func TestProgressEvent_Percent(t *testing.T) {
	tests := []struct {
		name      string
		event     ProgressEvent
		expected  float64
		available bool
	}{
		{"unknown total", ProgressEvent{DownloadedBytes: 10}, 0, false},
		{"half way", ProgressEvent{TotalBytes: 200, DownloadedBytes: 100}, 50, true},
		{"complete", ProgressEvent{TotalBytes: 200, DownloadedBytes: 200}, 100, true},
		{"overshoot is clamped", ProgressEvent{TotalBytes: 100, DownloadedBytes: 150}, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := tt.event.Percent()
			if ok != tt.available {
				t.Errorf("Expected available=%v, got %v", tt.available, ok)
			}
			if p != tt.expected {
				t.Errorf("Expected %.1f, got %.1f", tt.expected, p)
			}
		})
	}
}
