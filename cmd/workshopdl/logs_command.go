package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"workshopdl/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var runPrefix string
	var lines int
	var follow bool
	var list bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the log of the latest (or a given) run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.LogDir == "" {
				return errors.New("file logging is disabled (paths.log_dir is empty)")
			}
			out := cmd.OutOrStdout()

			if list {
				runs, err := logs.RunLogs(cfg.Paths.LogDir)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No run logs")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.RunID,
						run.Started.Local().Format("2006-01-02 15:04:05"),
						humanBytes(run.Size),
						run.Path,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Size", "Path"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			}

			run, err := logs.Find(cfg.Paths.LogDir, runPrefix)
			if err != nil {
				return err
			}
			tail, offset, err := logs.Tail(run.Path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			_, err = logs.Follow(cmd.Context(), run.Path, offset, 250*time.Millisecond, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&runPrefix, "run", "", "Run ID prefix (default: latest run)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&list, "list", false, "List run logs instead of printing one")
	return cmd
}
