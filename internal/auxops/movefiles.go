package auxops

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/fsutil"
	"droid.dev/instd/internal/instderr"
)

// moveFileOrDir renames src to dst, creating dst's missing parent
// directories (chowned to dstUID/dstGID as they're made) first, and
// recursing into a source directory one entry at a time so a partially
// moved tree still leaves whatever succeeded in place. An unreadable
// source is skipped rather than treated as fatal, matching
// movefileordir's tolerance for a source that has already disappeared.
func moveFileOrDir(src, dst *check.Absolute, dstUID, dstGID int) error {
	fi, err := os.Lstat(src.String())
	if err != nil {
		return nil
	}

	if !fi.IsDir() {
		if err := fsutil.EnsureDirAll(dst.Dir(), 0771, dstUID, dstGID); err != nil {
			return err
		}
		if err := os.Rename(src.String(), dst.String()); err != nil {
			return err
		}
		if err := os.Chown(dst.String(), dstUID, dstGID); err != nil {
			os.Remove(dst.String())
			return err
		}
		return nil
	}

	entries, err := os.ReadDir(src.String())
	if err != nil {
		return nil
	}
	var failed bool
	for _, de := range entries {
		name := de.Name()
		if err := moveFileOrDir(src.Append(name), dst.Append(name), dstUID, dstGID); err != nil {
			failed = true
		}
	}
	// Empty directories are deliberately left behind under src; whatever
	// package manager state made this migration necessary will erase the
	// rest of the source package's data anyway.
	if failed {
		return fmt.Errorf("aux: one or more entries under %s failed to move", src)
	}
	return nil
}

// MoveFiles executes every pending package-data migration recorded under
// the update-commands directory. Each file there lists, for a destination
// package, which now-obsolete source package's files at a given relative
// path should be renamed into the destination's place; lines are either a
// "dstpkg:srcpkg" header, a "#"-prefixed comment, or an indented relative
// path naming what to move under the most recently declared package pair.
// It corresponds to movefiles, and a missing update-commands directory is
// not an error since most devices never accumulate one.
func (m *Manager) MoveFiles() error {
	dir := m.Cfg.UpdateCommandsDir
	entries, err := os.ReadDir(dir.String())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return instderr.NewPath(instderr.FilesystemFailure, dir.String(), err)
	}

	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		m.processMoveFile(dir.Append(de.Name()))
	}
	return nil
}

func (m *Manager) processMoveFile(path *check.Absolute) {
	f, err := os.Open(path.String())
	if err != nil {
		m.Msg.Verbosef("aux: unable to open update commands at %s: %v", path, err)
		return
	}
	defer f.Close()

	var dstpkg, srcpkg string
	var dstUID, dstGID int
	haveDst := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimLeft(line, " \t")
		hasIndent := trimmed != line

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if hasIndent {
			if !haveDst {
				m.Msg.Verbosef("aux: path before package line in %s: %s", path, trimmed)
				continue
			}
			if srcpkg == "" {
				continue // source package no longer exists
			}
			srcPath := m.Paths.DataAppPackagePath("", srcpkg).Append(trimmed)
			dstPath := m.Paths.DataAppPackagePath("", dstpkg).Append(trimmed)
			if err := moveFileOrDir(srcPath, dstPath, dstUID, dstGID); err != nil {
				m.Msg.Verbosef("aux: move %s from %s to %s failed: %v", trimmed, srcpkg, dstpkg, err)
			}
			continue
		}

		div := strings.IndexByte(trimmed, ':')
		if div < 0 {
			m.Msg.Verbosef("aux: bad package spec in %s: %s", path, trimmed)
			continue
		}
		dstpkg, srcpkg = trimmed[:div], trimmed[div+1:]
		haveDst = true

		srcDir := m.Paths.DataAppPackagePath("", srcpkg)
		if !fsutil.Exists(srcDir) {
			srcpkg = ""
			continue
		}
		dstDir := m.Paths.DataAppPackagePath("", dstpkg)
		fi, err := os.Lstat(dstDir.String())
		if err != nil {
			// Destination package doesn't exist yet; normal when the
			// migration is driven by an original-package declaration
			// rather than a straightforward rename.
			srcpkg = ""
			continue
		}
		if st, ok := fi.Sys().(*syscall.Stat_t); ok {
			dstUID, dstGID = int(st.Uid), int(st.Gid)
		}
	}
}
