package steamcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"workshopdl/internal/config"
	"workshopdl/internal/fileutil"
	"workshopdl/internal/logging"
	"workshopdl/internal/services"
)

// FailureMarker is the substring SteamCMD prints on a failed operation.
const FailureMarker = "ERROR!"

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds each SteamCMD run. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithForceInstallDir prefixes runs with +force_install_dir <steamapps root>.
func WithForceInstallDir(enabled bool) Option {
	return func(c *Client) {
		c.forceInstallDir = enabled
	}
}

// WithTrash sends replaced output directories to the trash instead of deleting them.
func WithTrash(enabled bool) Option {
	return func(c *Client) {
		c.trash = enabled
	}
}

// WithLogger sets the logger used for SteamCMD output and relocation events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps SteamCMD workshop downloads.
type Client struct {
	binary          string
	steamappsRoot   string
	timeout         time.Duration
	forceInstallDir bool
	trash           bool
	exec            Executor
	logger          *slog.Logger
}

// New constructs a SteamCMD client for the given executable and steamapps root.
func New(binary, steamappsRoot string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("steamcmd binary required")
	}
	steamappsRoot = strings.TrimSpace(steamappsRoot)
	if steamappsRoot == "" {
		return nil, errors.New("steamapps root required")
	}
	client := &Client{
		binary:        binary,
		steamappsRoot: steamappsRoot,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "steamcmd")
	return client, nil
}

// BuildArgs returns the SteamCMD argument list for an anonymous, validated
// workshop item download. installDir is passed through +force_install_dir
// when non-empty.
func BuildArgs(installDir, gameID, itemID string) []string {
	args := make([]string, 0, 10)
	if installDir != "" {
		args = append(args, "+force_install_dir", installDir)
	}
	return append(args,
		"+login", "anonymous",
		"+workshop_download_item", gameID, itemID, "validate",
		"+quit",
	)
}

// WorkshopContentPath is where SteamCMD leaves a downloaded item.
func WorkshopContentPath(steamappsRoot, gameID, itemID string) string {
	return filepath.Join(steamappsRoot, "steamapps", "workshop", "content", gameID, itemID)
}

// DownloadItem runs one SteamCMD attempt for itemID and, on success, replaces
// destDir with the downloaded tree. It returns destDir.
func (c *Client) DownloadItem(ctx context.Context, gameID, itemID, destDir string) (string, error) {
	if strings.TrimSpace(destDir) == "" {
		return "", services.Wrap(services.ErrConfiguration, "steamcmd", "download", "destination directory required", nil)
	}
	if err := config.ValidateNumericID("game id", gameID); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "steamcmd", "download", "", err)
	}
	if err := config.ValidateNumericID("item id", itemID); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "steamcmd", "download", "", err)
	}
	logger := logging.WithContext(ctx, c.logger)

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	installDir := ""
	if c.forceInstallDir {
		installDir = c.steamappsRoot
	}
	args := BuildArgs(installDir, gameID, itemID)

	var failureLine string
	started := time.Now()
	logger.Debug("steamcmd starting", logging.String("binary", c.binary), logging.String("args", strings.Join(args, " ")))
	exitCode, runErr := c.exec.Run(runCtx, c.binary, args, func(line string) {
		logger.Debug("steamcmd output", logging.String("line", line))
		if failureLine == "" && strings.Contains(line, FailureMarker) {
			failureLine = strings.TrimSpace(line)
		}
	})

	switch {
	case ctx.Err() != nil:
		return "", fmt.Errorf("steamcmd item %s: %w", itemID, ctx.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return "", services.Wrap(services.ErrTimeout, "steamcmd", "workshop_download_item",
			fmt.Sprintf("item %s exceeded %s", itemID, c.timeout), runCtx.Err())
	case runErr != nil:
		return "", services.Wrap(services.ErrExternalTool, "steamcmd", "run", "item "+itemID, runErr)
	}

	if exitCode != 0 || failureLine != "" {
		detail := fmt.Sprintf("item %s: exit code %d", itemID, exitCode)
		if failureLine != "" {
			detail += ": " + failureLine
		}
		return "", services.Wrap(services.ErrItemDownloadFailed, "steamcmd", "workshop_download_item", detail, nil)
	}

	source := WorkshopContentPath(c.steamappsRoot, gameID, itemID)
	// SteamCMD sometimes exits cleanly without producing the item; treat it
	// like a reported failure so the batch retries.
	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return "", services.Wrap(services.ErrItemDownloadFailed, "steamcmd", "locate download",
			fmt.Sprintf("item %s: no content at %s after exit code 0", itemID, source), err)
	}
	if err := c.relocate(source, destDir); err != nil {
		return "", err
	}

	logger.Info("item downloaded",
		logging.String("path", destDir),
		logging.Duration("elapsed", time.Since(started)),
	)
	return destDir, nil
}

func (c *Client) relocate(source, destDir string) error {
	if err := fileutil.ClearPath(destDir, c.trash); err != nil {
		return services.Wrap(services.ErrFilesystem, "steamcmd", "replace destination", destDir, err)
	}
	if err := fileutil.MoveDir(source, destDir); err != nil {
		return services.Wrap(services.ErrFilesystem, "steamcmd", "move download",
			fmt.Sprintf("%s -> %s", source, destDir), err)
	}
	return nil
}
