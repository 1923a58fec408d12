package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogsCommandShowsLatestRun(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	older := filepath.Join(env.cfg.Paths.LogDir, "workshopdl-20261001T080000-aaaa1111.log")
	newer := filepath.Join(env.cfg.Paths.LogDir, "workshopdl-20261016T101500-bbbb2222.log")
	if err := os.WriteFile(older, []byte("old run\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newer, []byte("line1\nline2\nline3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "line2\nline3\n" {
		t.Fatalf("unexpected tail output %q", out)
	}

	out, _, err = runCLI(t, []string{"logs", "--run", "aaaa"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	requireContains(t, out, "old run")

	out, _, err = runCLI(t, []string{"logs", "--list"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --list: %v", err)
	}
	if strings.Index(out, "bbbb2222") > strings.Index(out, "aaaa1111") {
		t.Fatalf("expected newest run first:\n%s", out)
	}
}

func TestDownloadWritesRunLog(t *testing.T) {
	env := setupCLITestEnv(t)
	env.api.collections["1"] = []string{"2"}

	if _, _, err := runCLI(t, []string{"downloadcollection", "--collection", "1"}, env.configPath); err != nil {
		t.Fatalf("downloadcollection: %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(env.cfg.Paths.LogDir, "workshopdl-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one run log, got %v (%v)", matches, err)
	}
}
