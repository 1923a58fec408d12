package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"workshopdl/internal/logging"
)

type collectionItemJSON struct {
	Position    int    `json:"position"`
	ItemID      string `json:"item_id"`
	Title       string `json:"title,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	TimeUpdated int64  `json:"time_updated,omitempty"`
}

func newCollectionCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "collection <id-or-url>",
		Short: "List the items of a workshop collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			api, err := ctx.steamAPI(logger)
			if err != nil {
				return err
			}
			runCtx := ctx.runContext(cmd)
			items, err := api.CollectionItems(runCtx, args[0])
			if err != nil {
				return err
			}
			details, err := api.ItemDetails(runCtx, items)
			if err != nil {
				logging.WarnWithContext(logger, "item details unavailable", "item_details_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "listing shows item IDs only"),
				)
			}

			rows := make([]collectionItemJSON, 0, len(items))
			for i, id := range items {
				row := collectionItemJSON{Position: i + 1, ItemID: id}
				if detail, ok := details[id]; ok {
					row.Title = detail.Title
					row.SizeBytes = detail.Size()
					row.TimeUpdated = detail.TimeUpdated
				}
				rows = append(rows, row)
			}

			if asJSON {
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "Collection has no items")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Item", "Title", "Size", "Updated"},
				collectionTableRows(rows),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintln(out, pluralize(len(rows), "item", "items"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func collectionTableRows(items []collectionItemJSON) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		size := ""
		if item.SizeBytes > 0 {
			size = humanBytes(item.SizeBytes)
		}
		updated := ""
		if item.TimeUpdated > 0 {
			updated = time.Unix(item.TimeUpdated, 0).UTC().Format("2006-01-02")
		}
		rows = append(rows, []string{strconv.Itoa(item.Position), item.ItemID, item.Title, size, updated})
	}
	return rows
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
