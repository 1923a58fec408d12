package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir       string `toml:"log_dir" yaml:"log_dir"`
	SteamAppsDir string `toml:"steamapps_dir" yaml:"steamapps_dir"`
	OutputDir    string `toml:"output_dir" yaml:"output_dir"`
}

// SteamCMD contains configuration for the external download tool.
type SteamCMD struct {
	Binary          string `toml:"binary" yaml:"binary"`
	TimeoutSeconds  int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
	ForceInstallDir bool   `toml:"force_install_dir" yaml:"force_install_dir"`
}

// Steam contains configuration for the Steam Web API.
type Steam struct {
	APIBaseURL            string `toml:"api_base_url" yaml:"api_base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	RequestRetries        int    `toml:"request_retries" yaml:"request_retries"`
}

// Download contains configuration for the batch orchestrator.
type Download struct {
	GameID           string `toml:"game_id" yaml:"game_id"`
	MaxAttempts      int    `toml:"max_attempts" yaml:"max_attempts"`
	RetryBaseDelayMS int    `toml:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMS  int    `toml:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
	ReplaceMode      string `toml:"replace_mode" yaml:"replace_mode"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format" yaml:"format"`
	Level         string `toml:"level" yaml:"level"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
}

// Config encapsulates all configuration values for workshopdl.
//
// Configuration sections by subsystem:
//   - Paths: log directory plus default steamapps and output directories
//   - SteamCMD: executable, per-attempt timeout, install dir forcing
//   - Steam: Web API base URL, request timeout and transport retries
//   - Download: game ID default, attempt bound, backoff, replace mode
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths" yaml:"paths"`
	SteamCMD SteamCMD `toml:"steamcmd" yaml:"steamcmd"`
	Steam    Steam    `toml:"steam" yaml:"steam"`
	Download Download `toml:"download" yaml:"download"`
	Logging  Logging  `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigRelPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
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

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
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

	defaultPath, err := expandPath(defaultConfigRelPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigFilename)
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

// EnsureDirectories creates the directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// SteamCMDTimeout returns the per-attempt SteamCMD timeout.
func (c *Config) SteamCMDTimeout() time.Duration {
	return time.Duration(c.SteamCMD.TimeoutSeconds) * time.Second
}

// RequestTimeout returns the Steam Web API request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Steam.RequestTimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the initial backoff between download attempts.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Download.RetryBaseDelayMS) * time.Millisecond
}

// RetryMaxDelay returns the backoff ceiling between download attempts.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Download.RetryMaxDelayMS) * time.Millisecond
}

// RunLogPath returns the per-invocation log file path, or "" when file logging is disabled.
func (c *Config) RunLogPath(runID string, started time.Time) string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	name := "workshopdl-" + started.UTC().Format("20060102T150405")
	if runID = strings.TrimSpace(runID); runID != "" {
		if len(runID) > 8 {
			runID = runID[:8]
		}
		name += "-" + runID
	}
	return filepath.Join(c.Paths.LogDir, name+".log")
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

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
