package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RunLogPattern matches the per-run log files written by the CLI.
const RunLogPattern = "workshopdl-*.log"

// ErrNoRunLogs reports an empty or missing log directory.
var ErrNoRunLogs = errors.New("no run logs found")

// RunLog describes one per-run log file.
type RunLog struct {
	Path    string
	RunID   string
	Started time.Time
	Size    int64
}

// RunLogs lists run logs in dir, newest first.
func RunLogs(dir string) ([]RunLog, error) {
	matches, err := filepath.Glob(filepath.Join(dir, RunLogPattern))
	if err != nil {
		return nil, fmt.Errorf("list run logs: %w", err)
	}
	runs := make([]RunLog, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		run := parseRunLogName(filepath.Base(path))
		run.Path = path
		run.Size = info.Size()
		if run.Started.IsZero() {
			run.Started = info.ModTime().UTC()
		}
		runs = append(runs, run)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Started.After(runs[j].Started)
	})
	return runs, nil
}

// Find returns the newest run log whose run ID starts with prefix; an empty
// prefix selects the newest run.
func Find(dir, prefix string) (RunLog, error) {
	runs, err := RunLogs(dir)
	if err != nil {
		return RunLog{}, err
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	for _, run := range runs {
		if prefix == "" || strings.HasPrefix(run.RunID, prefix) {
			return run, nil
		}
	}
	if prefix == "" {
		return RunLog{}, fmt.Errorf("%w in %s", ErrNoRunLogs, dir)
	}
	return RunLog{}, fmt.Errorf("%w for run %q in %s", ErrNoRunLogs, prefix, dir)
}

// parseRunLogName splits workshopdl-20261016T101500-1a2b3c4d.log.
func parseRunLogName(name string) RunLog {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, "workshopdl-"), ".log")
	stamp, runID, _ := strings.Cut(stem, "-")
	var run RunLog
	if ts, err := time.Parse("20060102T150405", stamp); err == nil {
		run.Started = ts
	}
	run.RunID = strings.ToLower(runID)
	return run
}
