package fsutil

import (
	"os"

	"droid.dev/instd/internal/check"
)

// DeleteContents removes every entry inside dir without removing dir
// itself, corresponding to delete_dir_contents with also_delete_dir=0.
// A missing dir is not an error.
func DeleteContents(dir *check.Absolute) error {
	entries, err := os.ReadDir(dir.String())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(dir.Append(e.Name()).String()); err != nil {
			return err
		}
	}
	return nil
}

// DeleteContentsAndDir removes dir and everything inside it, corresponding
// to delete_dir_contents_and_dir. A missing dir is not an error.
func DeleteContentsAndDir(dir *check.Absolute) error {
	if err := os.RemoveAll(dir.String()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
