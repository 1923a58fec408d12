package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"workshopdl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The SteamApps root exists; the output directory does not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SteamAppsDir = filepath.Join(base, "steam")
	cfgVal.Paths.OutputDir = filepath.Join(base, "LocalMods")
	cfgVal.Download.GameID = "602960"
	cfgVal.Download.RetryBaseDelayMS = 1
	cfgVal.Download.RetryMaxDelayMS = 1
	cfgVal.Steam.RequestRetries = 0
	if err := os.MkdirAll(cfgVal.Paths.SteamAppsDir, 0o755); err != nil {
		t.Fatalf("mkdir steamapps: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSteamAPI points the config at a test Steam Web API server.
func WithSteamAPI(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Steam.APIBaseURL = baseURL
	}
}

// WithStubSteamCMD writes a fake SteamCMD (see WriteStubSteamCMD) under the
// temp directory and points the config at it.
func WithStubSteamCMD(failing ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SteamCMD.Binary = WriteStubSteamCMD(b.t, filepath.Join(b.baseDir, "bin"), b.cfg.Paths.SteamAppsDir, failing...)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SteamAppsDir)
}
