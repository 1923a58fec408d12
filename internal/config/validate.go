package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSteam(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSteam() error {
	parsed, err := url.Parse(c.Steam.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("steam.api_base_url must be an absolute URL, got %q", c.Steam.APIBaseURL)
	}
	if c.Steam.RequestTimeoutSeconds <= 0 {
		return errors.New("steam.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.MaxAttempts < 1 {
		return errors.New("download.max_attempts must be >= 1")
	}
	if c.Download.RetryMaxDelayMS < c.Download.RetryBaseDelayMS {
		return errors.New("download.retry_max_delay_ms must be >= download.retry_base_delay_ms")
	}
	switch c.Download.ReplaceMode {
	case ReplaceDelete, ReplaceTrash:
	default:
		return fmt.Errorf("download.replace_mode must be %q or %q, got %q", ReplaceDelete, ReplaceTrash, c.Download.ReplaceMode)
	}
	if c.Download.GameID != "" {
		if err := ValidateNumericID("download.game_id", c.Download.GameID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

// ValidateNumericID checks that value is a non-empty unsigned decimal identifier.
func ValidateNumericID(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s must be set", field)
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return fmt.Errorf("%s must be a numeric Steam ID, got %q", field, value)
	}
	return nil
}
