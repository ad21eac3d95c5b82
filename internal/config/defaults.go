package config

const (
	defaultLogDir               = "~/.local/share/scribe/logs"
	defaultModel                = "whisper-1"
	defaultLanguage             = "pt"
	defaultBaseURL              = "https://api.openai.com/v1"
	defaultRequestTimeout       = 600
	defaultKeychainService      = "scribe-openai"
	defaultMaxUploadBytes int64 = 25 * 1024 * 1024
	defaultBitrate              = "64k"
	defaultFetchTimeout         = 3600
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults. The inbox
// directory has no default; it must come from the config file or INBOX_DIR.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Transcription: Transcription{
			Model:           defaultModel,
			Language:        defaultLanguage,
			BaseURL:         defaultBaseURL,
			TimeoutSeconds:  defaultRequestTimeout,
			KeychainService: defaultKeychainService,
		},
		Upload: Upload{
			MaxBytes: defaultMaxUploadBytes,
			Bitrate:  defaultBitrate,
		},
		Archive: Archive{
			MoveProcessed: true,
			MoveSkipped:   true,
		},
		Fetch: Fetch{
			Enabled:        true,
			TimeoutSeconds: defaultFetchTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
