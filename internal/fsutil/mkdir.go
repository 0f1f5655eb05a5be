// Package fsutil implements the low-level filesystem primitives the
// storage and dexopt orchestrators build on: strict directory creation,
// recursive deletion and free-space queries.
package fsutil

import (
	"fmt"
	"os"
	"syscall"

	"droid.dev/instd/internal/check"
)

// PrepareDirStrict ensures dir exists with exactly perm, uid and gid,
// refusing to follow an existing symlink at that path. It corresponds to
// fs_prepare_dir_strict: an existing symlink or non-directory at dir is an
// error, and an existing directory has its mode and ownership set to perm,
// uid and gid. Only dir itself is created; its parent must exist.
func PrepareDirStrict(dir *check.Absolute, perm os.FileMode, uid, gid int) error {
	path := dir.String()

	fi, err := os.Lstat(path)
	switch {
	case err == nil:
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("fsutil: refusing to prepare %q: is a symlink", path)
		}
		if !fi.IsDir() {
			return fmt.Errorf("fsutil: refusing to prepare %q: not a directory", path)
		}
	case os.IsNotExist(err):
		if err := os.Mkdir(path, perm); err != nil && !os.IsExist(err) {
			return err
		}
	default:
		return err
	}

	if err := os.Chmod(path, perm); err != nil {
		return err
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return err
	}
	return nil
}

// PrepareDir ensures dir exists with exactly perm and the given ownership,
// chmodding and chowning a pre-existing directory owned by someone else.
// Unlike [PrepareDirStrict] it does not check whether an existing entry is
// a symlink or a directory before doing so. It corresponds
// to fs_prepare_dir, used for shared directories such as a user's data
// root that outlive any single package.
func PrepareDir(dir *check.Absolute, perm os.FileMode, uid, gid int) error {
	path := dir.String()
	if err := os.Mkdir(path, perm); err != nil && !os.IsExist(err) {
		return err
	}
	if err := os.Chmod(path, perm); err != nil {
		return err
	}
	return os.Chown(path, uid, gid)
}

// EnsureDirAll behaves like [os.MkdirAll] but also chowns every path
// segment it creates, mirroring mkinnerdirs' incremental chown-as-you-go
// behaviour when constructing a nested destination during a move.
func EnsureDirAll(dir *check.Absolute, perm os.FileMode, uid, gid int) error {
	path := dir.String()
	if fi, err := os.Stat(path); err == nil {
		if !fi.IsDir() {
			return fmt.Errorf("fsutil: %q exists and is not a directory", path)
		}
		return nil
	}
	if err := EnsureDirAll(dir.Dir(), perm, uid, gid); err != nil {
		return err
	}
	if err := os.Mkdir(path, perm); err != nil && !os.IsExist(err) {
		return err
	}
	return os.Chown(path, uid, gid)
}

// Exists reports whether path exists, treating any stat error other than
// "not exist" as if the path does not exist, matching access(path, F_OK).
func Exists(path *check.Absolute) bool {
	_, err := os.Lstat(path.String())
	return err == nil
}

// Statfs reports free bytes and total bytes available at path.
func Statfs(path *check.Absolute) (free, total uint64, err error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path.String(), &st); err != nil {
		return 0, 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), uint64(st.Blocks) * uint64(st.Bsize), nil
}
