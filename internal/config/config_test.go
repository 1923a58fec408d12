package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"workshopdl/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STEAMCMD_PATH", "")
	t.Setenv("STEAM_API_BASE_URL", "")
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "workshopdl", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	wantLog := filepath.Join(wantLogDir, "workshopdl-20260304T050607-0123abcd.log")
	if got := cfg.RunLogPath("0123abcd-4567-89ef", started); got != wantLog {
		t.Fatalf("unexpected run log path: got %q want %q", got, wantLog)
	}
	if cfg.SteamCMD.Binary != "steamcmd" {
		t.Fatalf("expected bare steamcmd binary, got %q", cfg.SteamCMD.Binary)
	}
	if cfg.Download.MaxAttempts != 3 {
		t.Fatalf("expected 3 attempts by default, got %d", cfg.Download.MaxAttempts)
	}
	if cfg.Download.ReplaceMode != config.ReplaceDelete {
		t.Fatalf("expected delete replace mode, got %q", cfg.Download.ReplaceMode)
	}
	if cfg.Steam.APIBaseURL != "https://api.steampowered.com" {
		t.Fatalf("unexpected api base url: %q", cfg.Steam.APIBaseURL)
	}
	if cfg.RequestTimeout().Seconds() != 30 {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
	if cfg.Paths.SteamAppsDir != "" || cfg.Paths.OutputDir != "" {
		t.Fatalf("expected optional paths to stay empty, got %q %q", cfg.Paths.SteamAppsDir, cfg.Paths.OutputDir)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.LogDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected log directory to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "workshopdl.toml")

	type payload struct {
		Paths struct {
			SteamAppsDir string `toml:"steamapps_dir"`
		} `toml:"paths"`
		SteamCMD struct {
			Binary          string `toml:"binary"`
			ForceInstallDir bool   `toml:"force_install_dir"`
		} `toml:"steamcmd"`
		Download struct {
			GameID      string `toml:"game_id"`
			MaxAttempts int    `toml:"max_attempts"`
			ReplaceMode string `toml:"replace_mode"`
		} `toml:"download"`
		Steam struct {
			APIBaseURL string `toml:"api_base_url"`
		} `toml:"steam"`
	}
	custom := payload{}
	custom.Paths.SteamAppsDir = filepath.Join(tempDir, "steam")
	custom.SteamCMD.Binary = filepath.Join(tempDir, "bin", "steamcmd.sh")
	custom.SteamCMD.ForceInstallDir = true
	custom.Download.GameID = "602960"
	custom.Download.MaxAttempts = 5
	custom.Download.ReplaceMode = "TRASH"
	custom.Steam.APIBaseURL = "https://example.com/api/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.SteamAppsDir != custom.Paths.SteamAppsDir {
		t.Fatalf("unexpected steamapps dir: %q", cfg.Paths.SteamAppsDir)
	}
	if cfg.SteamCMD.Binary != custom.SteamCMD.Binary {
		t.Fatalf("unexpected binary: %q", cfg.SteamCMD.Binary)
	}
	if !cfg.SteamCMD.ForceInstallDir {
		t.Fatal("expected force_install_dir to be true")
	}
	if cfg.Download.GameID != "602960" || cfg.Download.MaxAttempts != 5 {
		t.Fatalf("unexpected download settings: %+v", cfg.Download)
	}
	if cfg.Download.ReplaceMode != config.ReplaceTrash {
		t.Fatalf("expected replace mode to be normalized to trash, got %q", cfg.Download.ReplaceMode)
	}
	if cfg.Steam.APIBaseURL != "https://example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Steam.APIBaseURL)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "workshopdl.yaml")
	content := "download:\n  game_id: \"602960\"\n  max_attempts: 4\nlogging:\n  level: debug\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml config: %v", err)
	}

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected yaml config to exist")
	}
	if cfg.Download.GameID != "602960" || cfg.Download.MaxAttempts != 4 {
		t.Fatalf("unexpected download settings: %+v", cfg.Download)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Download.RetryMaxDelayMS != config.Default().Download.RetryMaxDelayMS {
		t.Fatalf("expected defaults to survive yaml decode, got %d", cfg.Download.RetryMaxDelayMS)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	badTOML := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(badTOML, []byte("[download\nmax_attempts ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(badTOML); err == nil {
		t.Fatal("expected parse error for invalid TOML")
	}

	badYAML := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badYAML, []byte("download: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(badYAML); err == nil {
		t.Fatal("expected parse error for invalid YAML")
	}
}

func TestEnvOverridesSteamCMDBinary(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STEAMCMD_PATH", "/opt/steamcmd/steamcmd.sh")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SteamCMD.Binary != "/opt/steamcmd/steamcmd.sh" {
		t.Fatalf("expected binary from env, got %q", cfg.SteamCMD.Binary)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "max_attempts = 3") {
		t.Fatalf("sample config missing attempt bound: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.SteamCMD.Binary != "steamcmd" {
		t.Fatalf("unexpected sample binary: %q", cfg.SteamCMD.Binary)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero attempts", func(c *config.Config) { c.Download.MaxAttempts = 0 }},
		{"max delay below base", func(c *config.Config) { c.Download.RetryMaxDelayMS = 1; c.Download.RetryBaseDelayMS = 10 }},
		{"unknown replace mode", func(c *config.Config) { c.Download.ReplaceMode = "shred" }},
		{"non numeric game id", func(c *config.Config) { c.Download.GameID = "barotrauma" }},
		{"relative api url", func(c *config.Config) { c.Steam.APIBaseURL = "api.steampowered.com" }},
		{"zero request timeout", func(c *config.Config) { c.Steam.RequestTimeoutSeconds = 0 }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateNumericID(t *testing.T) {
	if err := config.ValidateNumericID("gameid", "602960"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "  ", "-1", "12a", "1.5"} {
		if err := config.ValidateNumericID("gameid", bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
