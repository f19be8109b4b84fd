package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/download"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/progress"
	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/session"
)

// Default values
const (
	DefaultDownloadPath   = "tmp"
	DefaultMaxFileBytes   = int64(500 * 1024 * 1024)
	DefaultLogLevel       = "INFO"
	DefaultLogFile        = "logs/bot.log"
	DefaultLanguage       = session.DefaultLanguage
	DefaultExtractorArgs  = "youtube:player_client=tv,android"
	DefaultMaxParallel    = download.DefaultMaxParallel
	DefaultStaleDirMaxAge = 6 * time.Hour
	MinParallelDownloads  = download.MinParallel
	MaxParallelDownloads  = download.MaxParallel
)

var (
	// ErrMissingToken means BOT_TOKEN is not set.
	ErrMissingToken = errors.New("missing required configuration: BOT_TOKEN")

	// ErrMissingChannel means neither CHANNEL_ID nor CHANNEL_USERNAME is set.
	ErrMissingChannel = errors.New("missing required configuration: CHANNEL_ID or CHANNEL_USERNAME")
)

// Settings is the process configuration. It is immutable after Load.
type Settings struct {
	BotToken         string `envconfig:"BOT_TOKEN"         yaml:"bot_token"`
	ChannelID        string `envconfig:"CHANNEL_ID"        yaml:"channel_id"`
	ChannelUsername  string `envconfig:"CHANNEL_USERNAME"  yaml:"channel_username"`
	DownloadPath     string `envconfig:"DOWNLOAD_PATH"     yaml:"download_path"`
	MaxFileBytes     int64  `envconfig:"MAX_FILE_BYTES"    yaml:"max_file_bytes"`
	LogLevel         string `envconfig:"LOG_LEVEL"         yaml:"log_level"`
	LogFile          string `envconfig:"LOG_FILE"          yaml:"log_file"`
	Language         string `envconfig:"BOT_LANGUAGE"      yaml:"language"`
	CaptionSignature string `envconfig:"CAPTION_SIGNATURE" yaml:"caption_signature"`

	YTDLPPath          string `envconfig:"YTDLP_PATH"            yaml:"ytdlp_path"`
	YTDLPAutoInstall   bool   `envconfig:"YTDLP_AUTO_INSTALL"    yaml:"ytdlp_auto_install"`
	YTDLPUserAgent     string `envconfig:"YTDLP_USER_AGENT"      yaml:"ytdlp_user_agent"`
	YTDLPCookies       string `envconfig:"YTDLP_COOKIES"         yaml:"ytdlp_cookies"`
	YTDLPExtractorArgs string `envconfig:"YTDLP_EXTRACTOR_ARGS"  yaml:"ytdlp_extractor_args"`

	MaxParallelDownloads int           `envconfig:"MAX_PARALLEL_DOWNLOADS" yaml:"max_parallel_downloads"`
	ProgressInterval     time.Duration `envconfig:"PROGRESS_INTERVAL"      yaml:"progress_interval"`
	LinkCacheSize        int           `envconfig:"LINK_CACHE_SIZE"        yaml:"link_cache_size"`
	LinkCacheTTL         time.Duration `envconfig:"LINK_CACHE_TTL"         yaml:"link_cache_ttl"`
	StaleDirMaxAge       time.Duration `envconfig:"STALE_DIR_MAX_AGE"      yaml:"stale_dir_max_age"`

	ConcurrentFragments int           `envconfig:"CONCURRENT_FRAGMENTS" yaml:"concurrent_fragments"`
	Retries             int           `envconfig:"RETRIES"              yaml:"retries"`
	FragmentRetries     int           `envconfig:"FRAGMENT_RETRIES"     yaml:"fragment_retries"`
	SocketTimeout       time.Duration `envconfig:"SOCKET_TIMEOUT"       yaml:"socket_timeout"`
}

// ChannelRef identifies the gating channel
type ChannelRef struct {
	ID       int64
	Username string // with leading '@'
}

// IsZero reports whether no channel is configured
func (c ChannelRef) IsZero() bool {
	return c.ID == 0 && c.Username == ""
}

// Default returns settings with every default applied
func Default() Settings {
	tuning := download.DefaultTuning()
	return Settings{
		DownloadPath:         DefaultDownloadPath,
		MaxFileBytes:         DefaultMaxFileBytes,
		LogLevel:             DefaultLogLevel,
		LogFile:              DefaultLogFile,
		Language:             DefaultLanguage,
		YTDLPExtractorArgs:   DefaultExtractorArgs,
		MaxParallelDownloads: DefaultMaxParallel,
		ProgressInterval:     progress.DefaultInterval,
		LinkCacheSize:        session.DefaultLinkCacheSize,
		LinkCacheTTL:         session.DefaultLinkCacheTTL,
		StaleDirMaxAge:       DefaultStaleDirMaxAge,
		ConcurrentFragments:  tuning.ConcurrentFragments,
		Retries:              tuning.Retries,
		FragmentRetries:      tuning.FragmentRetries,
		SocketTimeout:        tuning.SocketTimeout,
	}
}

// Load builds settings from, in increasing precedence: defaults, the YAML
// file at path (optional), and the environment. A .env file in the working
// directory is loaded into the environment first when present.
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("unmarshaling config file: %w", err)
		}
	}

	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalize clamps numeric settings and resolves the download path
func (s *Settings) normalize() error {
	defaults := Default()

	if s.MaxFileBytes <= 0 {
		s.MaxFileBytes = defaults.MaxFileBytes
	}
	if s.MaxParallelDownloads < MinParallelDownloads {
		s.MaxParallelDownloads = MinParallelDownloads
	}
	if s.MaxParallelDownloads > MaxParallelDownloads {
		s.MaxParallelDownloads = MaxParallelDownloads
	}
	if s.ProgressInterval <= 0 {
		s.ProgressInterval = defaults.ProgressInterval
	}
	if s.StaleDirMaxAge <= 0 {
		s.StaleDirMaxAge = defaults.StaleDirMaxAge
	}
	if s.Language == "" {
		s.Language = defaults.Language
	}
	s.ChannelUsername = normalizeUsername(s.ChannelUsername)

	if s.DownloadPath == "" {
		s.DownloadPath = defaults.DownloadPath
	}
	abs, err := filepath.Abs(s.DownloadPath)
	if err != nil {
		return fmt.Errorf("resolving download path: %w", err)
	}
	s.DownloadPath = abs
	return nil
}

// Channel parses the channel reference. A numeric CHANNEL_ID wins; an
// "@name" CHANNEL_ID is treated as a username.
func (s *Settings) Channel() (ChannelRef, error) {
	ref := ChannelRef{Username: normalizeUsername(s.ChannelUsername)}

	id := strings.TrimSpace(s.ChannelID)
	switch {
	case id == "":
	case strings.HasPrefix(id, "@"):
		if ref.Username == "" {
			ref.Username = id
		}
	default:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return ChannelRef{}, fmt.Errorf("CHANNEL_ID must be an integer or @username: %q", id)
		}
		ref.ID = n
	}
	return ref, nil
}

// Validate checks the settings required to serve
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.BotToken) == "" {
		return ErrMissingToken
	}
	ref, err := s.Channel()
	if err != nil {
		return err
	}
	if ref.IsZero() {
		return ErrMissingChannel
	}
	return nil
}

// Tuning returns the transport settings for the download service
func (s *Settings) Tuning() download.Tuning {
	return download.Tuning{
		ConcurrentFragments: s.ConcurrentFragments,
		Retries:             s.Retries,
		FragmentRetries:     s.FragmentRetries,
		SocketTimeout:       s.SocketTimeout,
		ExtractorArgs:       s.YTDLPExtractorArgs,
	}
}

// Masked returns a copy with secrets hidden, for display
func (s Settings) Masked() Settings {
	if len(s.BotToken) > 8 {
		s.BotToken = s.BotToken[:4] + strings.Repeat("*", len(s.BotToken)-8) + s.BotToken[len(s.BotToken)-4:]
	} else if s.BotToken != "" {
		s.BotToken = "****"
	}
	return s
}

func normalizeUsername(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "@") {
		return name
	}
	return "@" + name
}
