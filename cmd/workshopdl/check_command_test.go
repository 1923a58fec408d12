package main

import (
	"path/filepath"
	"testing"
)

func TestCheckCommandPasses(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "SteamCMD:")
	requireContains(t, out, "Steam Web API:")
	requireContains(t, out, "[OK]")
}

func TestCheckCommandReportsMissingSteamApps(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Paths.SteamAppsDir = filepath.Join(env.baseDir, "nope")
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"check", "--offline"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	requireContains(t, out, "SteamApps directory:")
	requireContains(t, out, "[ERROR]")
}
