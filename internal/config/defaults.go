package config

const (
	defaultWorkDir              = "~/.local/share/refile/staging"
	defaultLogDir               = "~/.local/share/refile/logs"
	defaultDBPath               = "~/.local/share/refile/refile.db"
	defaultGuardWindowSeconds   = 10
	defaultTaggerBinary         = "ffmpeg"
	defaultTaggerTimeoutSeconds = 300
	defaultThumbSize            = 320
	defaultSafetyTimeoutSeconds = 10
	defaultNotifyRequestTimeout = 10
	defaultMaxConcurrent        = 8
	defaultJanitorInterval      = 5
	defaultStagingMaxAgeMinutes = 120
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			DBPath:  defaultDBPath,
		},
		Guard: Guard{
			WindowSeconds: defaultGuardWindowSeconds,
		},
		Tagger: Tagger{
			Binary:         defaultTaggerBinary,
			TimeoutSeconds: defaultTaggerTimeoutSeconds,
		},
		Thumbs: Thumbs{
			Size: defaultThumbSize,
		},
		Safety: Safety{
			TimeoutSeconds: defaultSafetyTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Errors:         true,
			Lifecycle:      true,
		},
		Bot: Bot{
			MaxConcurrent: defaultMaxConcurrent,
		},
		Janitor: Janitor{
			IntervalMinutes:      defaultJanitorInterval,
			StagingMaxAgeMinutes: defaultStagingMaxAgeMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
