package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"workshopdl/internal/config"
	"workshopdl/internal/logging"
	"workshopdl/internal/services"
	"workshopdl/internal/steamapi"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	runID   string
	started time.Time

	loggerOnce sync.Once
	log        *slog.Logger
	logPath    string
	logErr     error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		runID:         uuid.NewString(),
		started:       time.Now(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", resolved, err)
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrFilesystem, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// logger builds the per-run logger on first use, after any command-level
// config overrides have been applied.
func (c *commandContext) logger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logErr = err
			return
		}
		c.log, c.logPath, c.logErr = logging.NewFromConfig(cfg, c.runID, c.started)
		if c.logErr == nil {
			c.log.Debug("run started",
				logging.String("config_path", c.configPath),
				logging.String("log_path", c.logPath),
			)
		}
	})
	return c.log, c.logErr
}

// runContext tags the command context with this invocation's run ID.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRunID(ctx, c.runID)
}

func (c *commandContext) steamAPI(logger *slog.Logger) (*steamapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return steamapi.New(
		steamapi.WithBaseURL(cfg.Steam.APIBaseURL),
		steamapi.WithTimeout(cfg.RequestTimeout()),
		steamapi.WithRetries(cfg.Steam.RequestRetries),
		steamapi.WithLogger(logger),
	), nil
}

// pruneLogs removes expired run logs once a command that logged has finished.
func (c *commandContext) pruneLogs() {
	if c.log == nil || c.config == nil || c.config.Paths.LogDir == "" {
		return
	}
	logging.CleanupOldLogs(c.log, c.config.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     c.config.Paths.LogDir,
		Pattern: "workshopdl-*.log",
		Exclude: []string{c.logPath},
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func flagValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
