package modconfig

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"workshopdl/internal/services"
)

const (
	// LocalModsDir is the game-relative directory holding installed mods.
	LocalModsDir = "LocalMods"
	// ManifestName marks a directory as a loadable content package.
	ManifestName = "filelist.xml"
)

// PackagePath returns the config path for a mod directory name.
func PackagePath(name string) string {
	return path.Join(LocalModsDir, name, ManifestName)
}

// PackagePathsForItems maps workshop item IDs to package paths, preserving order.
func PackagePathsForItems(ids []string) []string {
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		paths = append(paths, PackagePath(id))
	}
	return paths
}

// ScanModFolder returns package paths for the immediate subdirectories of dir
// that contain a filelist.xml, in name order.
func ScanModFolder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "modconfig", "scan mod folder", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		// Stat follows symlinked mod directories.
		info, err := os.Stat(full)
		if err != nil || !info.IsDir() {
			continue
		}
		manifest, err := os.Stat(filepath.Join(full, ManifestName))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, services.Wrap(services.ErrFilesystem, "modconfig", "scan mod folder", full, err)
		}
		if !manifest.Mode().IsRegular() {
			continue
		}
		paths = append(paths, PackagePath(entry.Name()))
	}
	return paths, nil
}
