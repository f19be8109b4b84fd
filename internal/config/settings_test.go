package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if s.MaxFileBytes != DefaultMaxFileBytes {
		t.Errorf("Expected max file bytes %d, got %d", DefaultMaxFileBytes, s.MaxFileBytes)
	}
	if s.MaxParallelDownloads != DefaultMaxParallel {
		t.Errorf("Expected max parallel %d, got %d", DefaultMaxParallel, s.MaxParallelDownloads)
	}
	if s.ProgressInterval != 1500*time.Millisecond {
		t.Errorf("Expected progress interval 1.5s, got %v", s.ProgressInterval)
	}
	if s.Language != "uz" {
		t.Errorf("Expected language uz, got %s", s.Language)
	}
	if s.YTDLPExtractorArgs != DefaultExtractorArgs {
		t.Errorf("Expected extractor args %s, got %s", DefaultExtractorArgs, s.YTDLPExtractorArgs)
	}
	if !filepath.IsAbs(s.DownloadPath) || filepath.Base(s.DownloadPath) != DefaultDownloadPath {
		t.Errorf("Expected absolute download path ending in %s, got %s", DefaultDownloadPath, s.DownloadPath)
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, `
bot_token: file-token
channel_username: news
download_path: `+dir+`
max_parallel_downloads: 4
progress_interval: 2s
link_cache_ttl: 1h
`)
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("RETRIES", "3")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if s.BotToken != "env-token" {
		t.Errorf("Expected environment to win, got %s", s.BotToken)
	}
	if s.ChannelUsername != "@news" {
		t.Errorf("Expected normalized username @news, got %s", s.ChannelUsername)
	}
	if s.DownloadPath != dir {
		t.Errorf("Expected download path %s, got %s", dir, s.DownloadPath)
	}
	if s.MaxParallelDownloads != 4 {
		t.Errorf("Expected max parallel 4, got %d", s.MaxParallelDownloads)
	}
	if s.ProgressInterval != 2*time.Second {
		t.Errorf("Expected progress interval 2s, got %v", s.ProgressInterval)
	}
	if s.LinkCacheTTL != time.Hour {
		t.Errorf("Expected link cache ttl 1h, got %v", s.LinkCacheTTL)
	}
	if tuning := s.Tuning(); tuning.Retries != 3 || tuning.ExtractorArgs != DefaultExtractorArgs {
		t.Errorf("Unexpected tuning %+v", tuning)
	}
}

func TestLoad_Clamping(t *testing.T) {
	tests := []struct {
		name        string
		parallel    string
		maxBytes    string
		expParallel int
		expBytes    int64
	}{
		{"above range", "50", "1024", MaxParallelDownloads, 1024},
		{"below range", "0", "-5", MinParallelDownloads, DefaultMaxFileBytes},
		{"in range", "3", "0", 3, DefaultMaxFileBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAX_PARALLEL_DOWNLOADS", tt.parallel)
			t.Setenv("MAX_FILE_BYTES", tt.maxBytes)

			s, err := Load("")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if s.MaxParallelDownloads != tt.expParallel {
				t.Errorf("Expected max parallel %d, got %d", tt.expParallel, s.MaxParallelDownloads)
			}
			if s.MaxFileBytes != tt.expBytes {
				t.Errorf("Expected max file bytes %d, got %d", tt.expBytes, s.MaxFileBytes)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}

	if _, err := Load(writeConfigFile(t, "retries: [1, 2")); err == nil {
		t.Error("Expected error for malformed YAML")
	}

	t.Setenv("RETRIES", "many")
	if _, err := Load(""); err == nil {
		t.Error("Expected error for non-integer RETRIES")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CAPTION_SIGNATURE=@from_dotenv\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("CAPTION_SIGNATURE") })

	s, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.CaptionSignature != "@from_dotenv" {
		t.Errorf("Expected signature from .env, got %q", s.CaptionSignature)
	}
}

func TestLoad_UnreadableDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".env"), 0755); err != nil {
		t.Fatalf("Failed to create .env directory: %v", err)
	}
	t.Chdir(dir)

	if _, err := Load(""); err == nil {
		t.Error("Expected error for unreadable .env")
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		username string
		expected ChannelRef
		wantErr  bool
	}{
		{"numeric id", "-1001234", "", ChannelRef{ID: -1001234}, false},
		{"numeric id with username", "-100", "news", ChannelRef{ID: -100, Username: "@news"}, false},
		{"username in id", "@news", "", ChannelRef{Username: "@news"}, false},
		{"bare username", "", "news", ChannelRef{Username: "@news"}, false},
		{"nothing", "", "", ChannelRef{}, false},
		{"garbage id", "news", "", ChannelRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{ChannelID: tt.id, ChannelUsername: tt.username}
			ref, err := s.Channel()
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if ref != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, ref)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := Settings{ChannelID: "-100"}
	if err := s.Validate(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Expected ErrMissingToken, got %v", err)
	}

	s = Settings{BotToken: "token"}
	if err := s.Validate(); !errors.Is(err, ErrMissingChannel) {
		t.Errorf("Expected ErrMissingChannel, got %v", err)
	}

	s = Settings{BotToken: "token", ChannelID: "abc"}
	if err := s.Validate(); err == nil {
		t.Error("Expected error for malformed channel id")
	}

	s = Settings{BotToken: "token", ChannelUsername: "@news"}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected valid settings, got %v", err)
	}
}

func TestMasked(t *testing.T) {
	s := Settings{BotToken: "123456:ABCDEFGH"}
	masked := s.Masked()

	if masked.BotToken != "1234*******EFGH" {
		t.Errorf("Expected masked token, got %s", masked.BotToken)
	}
	if s.BotToken != "123456:ABCDEFGH" {
		t.Error("Masked must not modify the receiver")
	}

	short := Settings{BotToken: "abc"}.Masked()
	if short.BotToken != "****" {
		t.Errorf("Expected short token fully masked, got %s", short.BotToken)
	}
}
