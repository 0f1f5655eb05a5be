package auxops

import (
	"fmt"
	"os"
	"syscall"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/fsutil"
	"droid.dev/instd/internal/idspace"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/paths"
)

// LinkLib replaces pkgname's private "lib" entry with a symlink to
// asecLibDir, used when a package's native libraries live inside an ASEC
// container rather than its own data directory. An existing lib directory
// is removed with its contents. The package directory is owned by
// install:install with mode 0700 for the duration of the relink, and its
// mode and ownership are restored to whatever they were on the way out,
// regardless of whether the relink itself succeeded.
func (m *Manager) LinkLib(uuid paths.VolumeUUID, pkgname, asecLibDir string, userid idspace.UserID) error {
	pkgdir := m.Paths.DataUserPackagePath(uuid, userid, pkgname)
	libSymlink := pkgdir.Append("lib")

	fi, err := os.Lstat(pkgdir.String())
	if err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, pkgdir.String(), err)
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return instderr.NewPath(instderr.FilesystemFailure, pkgdir.String(), fmt.Errorf("aux: cannot read owner"))
	}
	origMode, origUID, origGID := fi.Mode(), int(st.Uid), int(st.Gid)

	if err := os.Chown(pkgdir.String(), aidInstall, aidInstall); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, pkgdir.String(), err)
	}

	rc := m.relinkLib(pkgdir, libSymlink, asecLibDir)

	if err := os.Chmod(pkgdir.String(), origMode); err != nil && rc == nil {
		rc = instderr.NewPath(instderr.FilesystemFailure, pkgdir.String(), err)
	}
	if err := os.Chown(pkgdir.String(), origUID, origGID); err != nil && rc == nil {
		rc = instderr.NewPath(instderr.FilesystemFailure, pkgdir.String(), err)
	}
	return rc
}

func (m *Manager) relinkLib(pkgdir, libSymlink *check.Absolute, asecLibDir string) error {
	if err := os.Chmod(pkgdir.String(), 0700); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, pkgdir.String(), err)
	}

	fi, err := os.Lstat(libSymlink.String())
	switch {
	case err == nil && fi.IsDir():
		if err := fsutil.DeleteContentsAndDir(libSymlink); err != nil {
			return instderr.NewPath(instderr.FilesystemFailure, libSymlink.String(), err)
		}
	case err == nil && fi.Mode()&os.ModeSymlink != 0:
		if err := os.Remove(libSymlink.String()); err != nil {
			return instderr.NewPath(instderr.FilesystemFailure, libSymlink.String(), err)
		}
	case err != nil && !os.IsNotExist(err):
		return instderr.NewPath(instderr.FilesystemFailure, libSymlink.String(), err)
	}

	if err := os.Symlink(asecLibDir, libSymlink.String()); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, libSymlink.String(), err)
	}
	return nil
}
