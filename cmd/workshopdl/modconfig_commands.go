package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"workshopdl/internal/config"
	"workshopdl/internal/logging"
	"workshopdl/internal/modconfig"
)

func newSetConfigFromFolderCommand(ctx *commandContext) *cobra.Command {
	var modFolder string
	var gameConfig string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set-config-from-folder",
		Short: "Rewrite the package list from installed mod folders",
		Long: `Scan the immediate subdirectories of --modfolder, keep those containing a
filelist.xml, and replace contentpackages/regularpackages in --game-config
with one package entry per folder, in name order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := config.ExpandPath(strings.TrimSpace(modFolder))
			if err != nil {
				return fmt.Errorf("resolve --modfolder: %w", err)
			}
			target, err := config.ExpandPath(strings.TrimSpace(gameConfig))
			if err != nil {
				return fmt.Errorf("resolve --game-config: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			paths, err := modconfig.ScanModFolder(folder)
			if err != nil {
				return err
			}
			logger.Info("mod folder scanned",
				logging.String("folder", folder),
				logging.Int("package_count", len(paths)),
			)
			return writePackageList(cmd, ctx, target, paths, dryRun)
		},
	}

	cmd.Flags().StringVar(&modFolder, "modfolder", "", "Folder holding one subdirectory per mod")
	cmd.Flags().StringVar(&gameConfig, "game-config", "", "Game XML config file to rewrite")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the package list change without writing")
	_ = cmd.MarkFlagRequired("modfolder")
	_ = cmd.MarkFlagRequired("game-config")
	return cmd
}

func newSetConfigFromCollectionCommand(ctx *commandContext) *cobra.Command {
	var collection string
	var gameConfig string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set-config-from-collection",
		Short: "Rewrite the package list from a workshop collection",
		Long: `Resolve --collection and replace contentpackages/regularpackages in
--game-config with LocalMods/<item id>/filelist.xml for each item, in
collection order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ExpandPath(strings.TrimSpace(gameConfig))
			if err != nil {
				return fmt.Errorf("resolve --game-config: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			api, err := ctx.steamAPI(logger)
			if err != nil {
				return err
			}
			items, err := api.CollectionItems(ctx.runContext(cmd), collection)
			if err != nil {
				return err
			}
			return writePackageList(cmd, ctx, target, modconfig.PackagePathsForItems(items), dryRun)
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "Collection ID or workshop URL (?id=...)")
	cmd.Flags().StringVar(&gameConfig, "game-config", "", "Game XML config file to rewrite")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the package list change without writing")
	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("game-config")
	return cmd
}

func writePackageList(cmd *cobra.Command, ctx *commandContext, target string, paths []string, dryRun bool) error {
	if dryRun {
		return previewPackageList(cmd, target, paths)
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}
	removed, err := modconfig.WritePackages(target, paths)
	if err != nil {
		return err
	}
	logger.Info("package list written",
		logging.String("config", target),
		logging.Int("removed", removed),
		logging.Int("written", len(paths)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s (replaced %d)\n",
		pluralize(len(paths), "package", "packages"), target, removed)
	return nil
}

// previewPackageList prints the current and proposed package lists of target
// without modifying it.
func previewPackageList(cmd *cobra.Command, target string, paths []string) error {
	current, err := modconfig.ReadPackages(target)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (dry run)\n", target)
	for _, path := range current {
		fmt.Fprintf(out, "  - %s\n", path)
	}
	for _, path := range paths {
		fmt.Fprintf(out, "  + %s\n", path)
	}
	fmt.Fprintf(out, "Would replace %d with %s\n", len(current), pluralize(len(paths), "package", "packages"))
	return nil
}
