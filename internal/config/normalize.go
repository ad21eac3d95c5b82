package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment keys recognized as overrides. These take precedence over the
// config file so a shell profile can steer a run without editing TOML.
const (
	EnvInboxDir      = "INBOX_DIR"
	EnvModel         = "TRANSCRIBE_MODEL"
	EnvLanguage      = "TRANSCRIBE_LANGUAGE"
	EnvAutoDetect    = "TRANSCRIBE_AUTO_DETECT"
	EnvMoveProcessed = "MOVE_AUDIO_TO_ARCHIVE"
	EnvMoveSkipped   = "MOVE_SKIPPED_TO_ARCHIVE"
	EnvMaxBytes      = "MAX_UPLOAD_BYTES"
)

func (c *Config) normalize() error {
	if err := c.applyEnvOverrides(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeUpload()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if value, ok := os.LookupEnv(EnvInboxDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.InboxDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvModel); ok && strings.TrimSpace(value) != "" {
		c.Transcription.Model = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvLanguage); ok && strings.TrimSpace(value) != "" {
		c.Transcription.Language = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvAutoDetect); ok && strings.TrimSpace(value) != "" {
		parsed, err := parseBoolValue(EnvAutoDetect, value)
		if err != nil {
			return err
		}
		c.Transcription.AutoDetect = parsed
	}
	if value, ok := os.LookupEnv(EnvMoveProcessed); ok && strings.TrimSpace(value) != "" {
		parsed, err := parseBoolValue(EnvMoveProcessed, value)
		if err != nil {
			return err
		}
		c.Archive.MoveProcessed = parsed
	}
	if value, ok := os.LookupEnv(EnvMoveSkipped); ok && strings.TrimSpace(value) != "" {
		parsed, err := parseBoolValue(EnvMoveSkipped, value)
		if err != nil {
			return err
		}
		c.Archive.MoveSkipped = parsed
	}
	if value, ok := os.LookupEnv(EnvMaxBytes); ok && strings.TrimSpace(value) != "" {
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvMaxBytes, value)
		}
		c.Upload.MaxBytes = parsed
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.InboxDir = strings.TrimSpace(c.Paths.InboxDir)
	if c.Paths.InboxDir != "" {
		if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
			return fmt.Errorf("paths.inbox_dir: %w", err)
		}
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultLanguage
	}
	if c.Transcription.Language == "auto" {
		c.Transcription.AutoDetect = true
	}
	c.Transcription.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcription.BaseURL), "/")
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = defaultBaseURL
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultRequestTimeout
	}
	c.Transcription.KeychainService = strings.TrimSpace(c.Transcription.KeychainService)
}

func (c *Config) normalizeUpload() {
	c.Upload.Bitrate = strings.ToLower(strings.TrimSpace(c.Upload.Bitrate))
	if c.Upload.Bitrate == "" {
		c.Upload.Bitrate = defaultBitrate
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = defaultMaxUploadBytes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func parseBoolValue(key, value string) (bool, error) {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q (use 1 or 0)", key, value)
	}
	return parsed, nil
}
