package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"workshopdl/internal/config"
	"workshopdl/internal/logging"
	"workshopdl/internal/preflight"
	"workshopdl/internal/services"
	"workshopdl/internal/services/steamcmd"
	"workshopdl/internal/steamapi"
	"workshopdl/internal/workshop"
)

type downloadOptions struct {
	steamCMDPath    string
	gameID          string
	steamApps       string
	collection      string
	output          string
	attempts        int
	forceInstallDir bool
	strict          bool
	json            bool
}

func newDownloadCollectionCommand(ctx *commandContext) *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "downloadcollection",
		Short: "Download every item of a workshop collection through SteamCMD",
		Long: `Resolve a Steam Workshop collection and download each item, in order,
into <output>/<item id>. Items are retried with backoff; a failed item never
stops the batch. The exit status is non-zero for item failures only with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyDownloadFlags(cmd, cfg, &opts); err != nil {
				return err
			}
			return runDownloadCollection(cmd, ctx, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.steamCMDPath, "steamcmdpath", "", "Path to the SteamCMD executable (default from config or STEAMCMD_PATH)")
	cmd.Flags().StringVar(&opts.gameID, "gameid", "", "Steam app ID that owns the workshop items")
	cmd.Flags().StringVar(&opts.steamApps, "steamapps", "", "SteamCMD install root containing steamapps/")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "Collection ID or workshop URL (?id=...)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Directory receiving one folder per item (default: current directory)")
	cmd.Flags().IntVar(&opts.attempts, "attempts", 0, "Total download attempts per item (default from config)")
	cmd.Flags().BoolVar(&opts.forceInstallDir, "force-install-dir", false, "Pass +force_install_dir <steamapps> to SteamCMD")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when any item fails")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output the run report as JSON")
	return cmd
}

// applyDownloadFlags layers explicit flags over the loaded config.
func applyDownloadFlags(cmd *cobra.Command, cfg *config.Config, opts *downloadOptions) error {
	if value := strings.TrimSpace(opts.steamCMDPath); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "downloadcollection", "resolve --steamcmdpath", value, err)
		}
		cfg.SteamCMD.Binary = expanded
	}
	if value := strings.TrimSpace(opts.steamApps); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "downloadcollection", "resolve --steamapps", value, err)
		}
		cfg.Paths.SteamAppsDir = expanded
	}
	if value := strings.TrimSpace(opts.output); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "downloadcollection", "resolve --output", value, err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if cfg.Paths.OutputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return services.Wrap(services.ErrFilesystem, "downloadcollection", "resolve output directory", "", err)
		}
		cfg.Paths.OutputDir = wd
	}
	if value := strings.TrimSpace(opts.gameID); value != "" {
		cfg.Download.GameID = value
	}
	if cmd.Flags().Changed("attempts") {
		cfg.Download.MaxAttempts = opts.attempts
	}
	if cmd.Flags().Changed("force-install-dir") {
		cfg.SteamCMD.ForceInstallDir = opts.forceInstallDir
	}

	if err := config.ValidateNumericID("--gameid", cfg.Download.GameID); err != nil {
		return services.Wrap(services.ErrConfiguration, "downloadcollection", "validate flags", "", err)
	}
	if cfg.Paths.SteamAppsDir == "" {
		return services.Wrap(services.ErrConfiguration, "downloadcollection", "validate flags", "--steamapps must be set", nil)
	}
	if strings.TrimSpace(opts.collection) == "" {
		return services.Wrap(services.ErrConfiguration, "downloadcollection", "validate flags", "--collection must be set", nil)
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "downloadcollection", "validate flags", "", err)
	}
	return nil
}

func runDownloadCollection(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts downloadOptions) error {
	if failed := preflight.Failed(preflight.ForDownload(cfg)); len(failed) > 0 {
		parts := make([]string, 0, len(failed))
		for _, result := range failed {
			parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
		return services.Wrap(services.ErrConfiguration, "downloadcollection", "preflight", strings.Join(parts, "; "), nil)
	}

	logger, err := ctx.logger()
	if err != nil {
		return err
	}
	runCtx := ctx.runContext(cmd)

	api, err := ctx.steamAPI(logger)
	if err != nil {
		return err
	}
	items, err := api.CollectionItems(runCtx, opts.collection)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		if opts.json {
			return writeJSON(cmd, newDownloadReportJSON(workshop.Report{GameID: cfg.Download.GameID}, nil, ctx.logPath))
		}
		fmt.Fprintln(out, "Collection has no items; nothing to download")
		return nil
	}

	details, err := api.ItemDetails(runCtx, items)
	if err != nil {
		logging.WarnWithContext(logger, "item titles unavailable", "item_details_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "summary shows item IDs only"),
		)
	}

	fetcher, err := steamcmd.New(cfg.SteamCMD.Binary, cfg.Paths.SteamAppsDir,
		steamcmd.WithTimeout(cfg.SteamCMDTimeout()),
		steamcmd.WithForceInstallDir(cfg.SteamCMD.ForceInstallDir),
		steamcmd.WithTrash(cfg.Download.ReplaceMode == config.ReplaceTrash),
		steamcmd.WithLogger(logger),
	)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "downloadcollection", "configure steamcmd", "", err)
	}
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrFilesystem, "downloadcollection", "create output directory", cfg.Paths.OutputDir, err)
	}

	colorize := !opts.json && shouldColorize(out)
	downloader := workshop.NewDownloader(fetcher,
		workshop.WithMaxAttempts(cfg.Download.MaxAttempts),
		workshop.WithBackoff(cfg.RetryBaseDelay(), cfg.RetryMaxDelay()),
		workshop.WithLogger(logger),
		workshop.WithLock(filepath.Join(cfg.Paths.SteamAppsDir, workshop.LockFileName)),
		workshop.WithObserver(func(index, total int, outcome workshop.Outcome) {
			if opts.json {
				return
			}
			fmt.Fprintln(out, renderProgressLine(index, total, outcome, itemTitle(details, outcome.ItemID), colorize))
		}),
	)

	report, err := downloader.Run(runCtx, cfg.Download.GameID, items, cfg.Paths.OutputDir)
	if err != nil {
		return err
	}

	if opts.json {
		if err := writeJSON(cmd, newDownloadReportJSON(report, details, ctx.logPath)); err != nil {
			return err
		}
	} else {
		printDownloadSummary(out, report, details, ctx.logPath)
	}

	if err := runCtx.Err(); err != nil {
		return err
	}
	if failed := report.Failed(); opts.strict && len(failed) > 0 {
		return services.Wrap(services.ErrItemDownloadFailed, "downloadcollection", "",
			fmt.Sprintf("%d of %d items failed", len(failed), len(report.Outcomes)), nil)
	}
	return nil
}

func itemTitle(details map[string]steamapi.ItemDetail, id string) string {
	if detail, ok := details[id]; ok {
		return strings.TrimSpace(detail.Title)
	}
	return ""
}

func renderProgressLine(index, total int, outcome workshop.Outcome, title string, colorize bool) string {
	label := fmt.Sprintf("[%d/%d] %s", index+1, total, outcome.ItemID)
	if title != "" {
		label += " " + title
	}
	var kind statusKind
	var message string
	switch outcome.Status {
	case workshop.StatusSucceeded:
		kind = statusOK
		message = fmt.Sprintf("downloaded after %s", pluralize(outcome.Attempts, "attempt", "attempts"))
	case workshop.StatusFailed:
		kind = statusError
		message = fmt.Sprintf("failed after %s", pluralize(outcome.Attempts, "attempt", "attempts"))
	default:
		kind = statusWarn
		message = "skipped"
	}
	line := fmt.Sprintf("%s%s [%s] %s", statusIndent, label, statusKindLabel(kind), message)
	if colorize {
		return statusKindColor(kind) + line + ansiReset
	}
	return line
}

func printDownloadSummary(out io.Writer, report workshop.Report, details map[string]steamapi.ItemDetail, logPath string) {
	rows := make([][]string, 0, len(report.Outcomes))
	for i, outcome := range report.Outcomes {
		result := outcome.Path
		if outcome.Status != workshop.StatusSucceeded && outcome.Err != nil {
			result = outcome.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			outcome.ItemID,
			itemTitle(details, outcome.ItemID),
			string(outcome.Status),
			strconv.Itoa(outcome.Attempts),
			result,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Item", "Title", "Status", "Attempts", "Result"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d succeeded, %d failed, %d skipped in %s\n",
		len(report.Succeeded()), len(report.Failed()), len(report.Skipped()),
		report.Elapsed().Round(time.Second))
	if logPath != "" {
		fmt.Fprintf(out, "Log: %s\n", logPath)
	}
}

type downloadItemJSON struct {
	ItemID     string `json:"item_id"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	Path       string `json:"path,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type downloadReportJSON struct {
	GameID    string             `json:"game_id"`
	Items     []downloadItemJSON `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Skipped   int                `json:"skipped"`
	ElapsedMS int64              `json:"elapsed_ms"`
	LogPath   string             `json:"log_path,omitempty"`
}

func newDownloadReportJSON(report workshop.Report, details map[string]steamapi.ItemDetail, logPath string) downloadReportJSON {
	items := make([]downloadItemJSON, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		item := downloadItemJSON{
			ItemID:     outcome.ItemID,
			Title:      itemTitle(details, outcome.ItemID),
			Status:     string(outcome.Status),
			Attempts:   outcome.Attempts,
			Path:       outcome.Path,
			DurationMS: outcome.Duration.Milliseconds(),
		}
		if outcome.Err != nil && outcome.Status != workshop.StatusSucceeded {
			item.Error = outcome.Err.Error()
		}
		items = append(items, item)
	}
	return downloadReportJSON{
		GameID:    report.GameID,
		Items:     items,
		Succeeded: len(report.Succeeded()),
		Failed:    len(report.Failed()),
		Skipped:   len(report.Skipped()),
		ElapsedMS: report.Elapsed().Milliseconds(),
		LogPath:   logPath,
	}
}
