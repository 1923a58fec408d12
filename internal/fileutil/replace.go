package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hymkor/trash-go"
)

// ClearPath removes whatever exists at path so a fresh copy can take its
// place. With toTrash set the entry is sent to the platform trash instead of
// being deleted outright. A missing path is not an error.
func ClearPath(path string, toTrash bool) error {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if toTrash {
		if err := trash.Throw(path); err != nil {
			return fmt.Errorf("move %q to trash: %w", path, err)
		}
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %q: %w", path, err)
	}
	return nil
}
