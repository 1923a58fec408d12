package steamcmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// Executor abstracts command execution for testability. Run streams every
// stdout and stderr line to onLine, waits for the process, and reports its
// exit code. A non-zero exit is not an error; err is reserved for failures to
// start, read from, or wait on the process.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) (exitCode int, err error)
}

const (
	maxLineBytes = 1 << 20
	// defaultWaitDelay bounds how long output from processes that outlive
	// SteamCMD (steamcmd.sh forks the real binary) is drained after exit or kill.
	defaultWaitDelay = 5 * time.Second
)

type commandExecutor struct {
	waitDelay time.Duration
}

func (e commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) (int, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	configureProcessGroup(cmd)
	cmd.WaitDelay = e.waitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = defaultWaitDelay
	}

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start command: %w", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		once    sync.Once
		scanErr error
	)
	// Callers keep detector state across lines, so delivery is serialized.
	forward := func(line string) {
		if onLine == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		onLine(line)
	}
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
			// Keep draining so the process cannot block on a full pipe.
			_, _ = io.Copy(io.Discard, r)
		}
	}

	wg.Add(2)
	go scan(stdoutR)
	go scan(stderrR)

	// Wait owns the copy from the process pipes; WaitDelay caps it once the
	// child exits or the context kills the group.
	waitErr := cmd.Wait()
	_ = stdoutW.Close()
	_ = stderrW.Close()
	wg.Wait()

	if scanErr != nil {
		return -1, fmt.Errorf("scan output: %w", scanErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			return exitErr.ExitCode(), nil
		case errors.Is(waitErr, exec.ErrWaitDelay) && cmd.ProcessState != nil:
			return cmd.ProcessState.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait command: %w", waitErr)
	}
	return 0, nil
}
