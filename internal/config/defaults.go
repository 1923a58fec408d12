package config

const (
	defaultLogDir                = "~/.local/share/workshopdl/logs"
	defaultLogRetentionDays      = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultSteamCMDBinary        = "steamcmd"
	defaultSteamCMDTimeout       = 1800
	defaultSteamAPIBaseURL       = "https://api.steampowered.com"
	defaultSteamRequestTimeout   = 30
	defaultSteamRequestRetries   = 2
	defaultMaxAttempts           = 3
	defaultRetryBaseDelayMillis  = 2000
	defaultRetryMaxDelayMillis   = 30000
	defaultReplaceMode           = ReplaceDelete
	defaultConfigRelPath         = "~/.config/workshopdl/config.toml"
	defaultProjectConfigFilename = "workshopdl.toml"
)

// Replace modes control what happens to an existing item output directory.
const (
	ReplaceDelete = "delete"
	ReplaceTrash  = "trash"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		SteamCMD: SteamCMD{
			Binary:         defaultSteamCMDBinary,
			TimeoutSeconds: defaultSteamCMDTimeout,
		},
		Steam: Steam{
			APIBaseURL:            defaultSteamAPIBaseURL,
			RequestTimeoutSeconds: defaultSteamRequestTimeout,
			RequestRetries:        defaultSteamRequestRetries,
		},
		Download: Download{
			MaxAttempts:      defaultMaxAttempts,
			RetryBaseDelayMS: defaultRetryBaseDelayMillis,
			RetryMaxDelayMS:  defaultRetryMaxDelayMillis,
			ReplaceMode:      defaultReplaceMode,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
