package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSteamCMD(); err != nil {
		return err
	}
	c.normalizeSteam()
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.SteamAppsDir, err = expandPath(strings.TrimSpace(c.Paths.SteamAppsDir)); err != nil {
		return fmt.Errorf("paths.steamapps_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSteamCMD() error {
	c.SteamCMD.Binary = strings.TrimSpace(c.SteamCMD.Binary)
	if c.SteamCMD.Binary == "" || c.SteamCMD.Binary == defaultSteamCMDBinary {
		if value, ok := os.LookupEnv("STEAMCMD_PATH"); ok && strings.TrimSpace(value) != "" {
			c.SteamCMD.Binary = strings.TrimSpace(value)
		}
	}
	if c.SteamCMD.Binary == "" {
		c.SteamCMD.Binary = defaultSteamCMDBinary
	}
	// Bare command names are resolved through PATH at run time.
	if strings.ContainsAny(c.SteamCMD.Binary, `/\`) || strings.HasPrefix(c.SteamCMD.Binary, "~") {
		expanded, err := expandPath(c.SteamCMD.Binary)
		if err != nil {
			return fmt.Errorf("steamcmd.binary: %w", err)
		}
		c.SteamCMD.Binary = expanded
	}
	if c.SteamCMD.TimeoutSeconds < 0 {
		c.SteamCMD.TimeoutSeconds = 0
	}
	return nil
}

func (c *Config) normalizeSteam() {
	c.Steam.APIBaseURL = strings.TrimSpace(c.Steam.APIBaseURL)
	if value, ok := os.LookupEnv("STEAM_API_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Steam.APIBaseURL = strings.TrimSpace(value)
	}
	if c.Steam.APIBaseURL == "" {
		c.Steam.APIBaseURL = defaultSteamAPIBaseURL
	}
	c.Steam.APIBaseURL = strings.TrimRight(c.Steam.APIBaseURL, "/")
	if c.Steam.RequestTimeoutSeconds <= 0 {
		c.Steam.RequestTimeoutSeconds = defaultSteamRequestTimeout
	}
	if c.Steam.RequestRetries < 0 {
		c.Steam.RequestRetries = 0
	}
}

func (c *Config) normalizeDownload() {
	c.Download.GameID = strings.TrimSpace(c.Download.GameID)
	if c.Download.MaxAttempts == 0 {
		c.Download.MaxAttempts = defaultMaxAttempts
	}
	if c.Download.RetryBaseDelayMS < 0 {
		c.Download.RetryBaseDelayMS = 0
	}
	if c.Download.RetryMaxDelayMS <= 0 {
		c.Download.RetryMaxDelayMS = defaultRetryMaxDelayMillis
	}
	c.Download.ReplaceMode = strings.ToLower(strings.TrimSpace(c.Download.ReplaceMode))
	if c.Download.ReplaceMode == "" {
		c.Download.ReplaceMode = defaultReplaceMode
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
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
