package steamcmd

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "steamcmd")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestCommandExecutorStreamsBothStreamsAndReportsExitCode(t *testing.T) {
	script := writeScript(t, "echo out-line\necho \"ERROR! err-line\" 1>&2\nexit 3\n")

	var lines []string
	code, err := commandExecutor{}.Run(context.Background(), script, nil, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	sort.Strings(lines)
	if len(lines) != 2 || lines[0] != "ERROR! err-line" || lines[1] != "out-line" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestCommandExecutorPassesArgs(t *testing.T) {
	script := writeScript(t, "for a in \"$@\"; do echo \"$a\"; done\n")

	var lines []string
	code, err := commandExecutor{}.Run(context.Background(), script, BuildArgs("", "602960", "111"), func(line string) {
		lines = append(lines, line)
	})
	if err != nil || code != 0 {
		t.Fatalf("Run: code=%d err=%v", code, err)
	}
	if len(lines) != 7 || lines[3] != "602960" || lines[4] != "111" {
		t.Fatalf("unexpected echoed args %q", lines)
	}
}

func TestCommandExecutorMissingBinary(t *testing.T) {
	code, err := commandExecutor{}.Run(context.Background(), filepath.Join(t.TempDir(), "absent"), nil, nil)
	if err == nil {
		t.Fatal("expected start error")
	}
	if code != -1 {
		t.Fatalf("exit code = %d, want -1", code)
	}
}

func TestCommandExecutorTimeoutKillsWrapperChildren(t *testing.T) {
	// steamcmd.sh keeps the real binary as a child holding the output pipes.
	script := writeScript(t, "sleep 8 &\nsleep 8\n")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	started := time.Now()
	code, err := commandExecutor{waitDelay: time.Second}.Run(ctx, script, nil, nil)
	elapsed := time.Since(started)
	if elapsed > 4*time.Second {
		t.Fatalf("Run returned after %s, want prompt return on timeout", elapsed)
	}
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code == 0 {
		t.Fatalf("exit code = 0, want non-zero for killed process")
	}
}

func TestCommandExecutorReturnsWhenOrphanHoldsOutput(t *testing.T) {
	script := writeScript(t, "echo done\nsleep 8 &\nexit 0\n")

	var lines []string
	started := time.Now()
	code, err := commandExecutor{waitDelay: 500 * time.Millisecond}.Run(context.Background(), script, nil, func(line string) {
		lines = append(lines, line)
	})
	if elapsed := time.Since(started); elapsed > 4*time.Second {
		t.Fatalf("Run returned after %s, want bounded by wait delay", elapsed)
	}
	if err != nil || code != 0 {
		t.Fatalf("Run: code=%d err=%v", code, err)
	}
	if len(lines) != 1 || lines[0] != "done" {
		t.Fatalf("unexpected lines %q", lines)
	}
}
