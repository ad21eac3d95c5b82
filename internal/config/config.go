package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InboxDir string `toml:"inbox_dir"`
	LogDir   string `toml:"log_dir"`
}

// Transcription contains configuration for the remote speech-to-text API.
type Transcription struct {
	Model           string `toml:"model"`
	Language        string `toml:"language"`
	AutoDetect      bool   `toml:"auto_detect"`
	BaseURL         string `toml:"base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	KeychainService string `toml:"keychain_service"`
}

// Upload bounds what is shipped to the transcription API in one request.
type Upload struct {
	MaxBytes int64  `toml:"max_bytes"`
	Bitrate  string `toml:"bitrate"`
}

// Archive controls where audio files land after a run.
type Archive struct {
	MoveProcessed bool `toml:"move_processed"`
	MoveSkipped   bool `toml:"move_skipped"`
}

// Fetch contains configuration for the URL download phase.
type Fetch struct {
	Enabled        bool `toml:"enabled"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scribe.
//
// Configuration sections by subsystem:
//   - Paths: inbox root and log directory
//   - Transcription: model, language hint, endpoint, and credential lookup
//   - Upload: size ceiling and the bitrate used when shrinking oversized audio
//   - Archive: relocation behaviour for processed and skipped files
//   - Fetch: URL download phase toggles and timeout
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Upload        Upload        `toml:"upload"`
	Archive       Archive       `toml:"archive"`
	Fetch         Fetch         `toml:"fetch"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized, with environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/scribe/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working tree under the inbox plus the log
// directory. The inbox root itself is created implicitly when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.TranscriptsDir(), c.ArchiveDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		// Best-effort so a read-only log volume does not block a run.
		_ = os.MkdirAll(c.Paths.LogDir, 0o755)
	}
	return nil
}

// TranscriptsDir returns the directory transcripts are written to.
func (c *Config) TranscriptsDir() string {
	return filepath.Join(c.Paths.InboxDir, "Transcripts")
}

// ArchiveDir returns the directory processed audio is moved to.
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.Paths.InboxDir, "Archive")
}

// LedgerPath returns the JSONL dedup ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.InboxDir, "transcribed_index.jsonl")
}

// ErrorLogPath returns the append-only failure log location.
func (c *Config) ErrorLogPath() string {
	return filepath.Join(c.TranscriptsDir(), "transcribe_errors.log")
}

// URLFilePath returns the optional URL list consumed by the fetch phase.
func (c *Config) URLFilePath() string {
	return filepath.Join(c.Paths.InboxDir, "video_urls.txt")
}

// DownloadArchivePath returns the yt-dlp download archive location.
func (c *Config) DownloadArchivePath() string {
	return filepath.Join(c.Paths.InboxDir, "youtube_downloaded_archive.txt")
}

// LockPath returns the lock file guarding concurrent runs against one inbox.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.InboxDir, ".scribe.lock")
}

// FFmpegBinary returns the ffmpeg executable name used to shrink oversized audio.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// YtdlpBinary returns the yt-dlp executable name used by the fetch phase.
func (c *Config) YtdlpBinary() string {
	return "yt-dlp"
}

// SecurityBinary returns the macOS keychain tool used for credential fallback.
func (c *Config) SecurityBinary() string {
	return "security"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// ResolvePath reports which configuration file Load would read for the
// given override, and whether that file exists, without parsing it.
func ResolvePath(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
