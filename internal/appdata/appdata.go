// Package appdata implements the create/clear/destroy/restorecon lifecycle
// for a single package's per-user CE and DE storage directories.
package appdata

import (
	"errors"
	"os"

	"droid.dev/instd/internal/fsutil"
	"droid.dev/instd/internal/idspace"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/paths"
	"droid.dev/instd/internal/selinux"
)

// Manager creates, clears, destroys and relabels app data directories.
type Manager struct {
	Paths *paths.Resolver
	Label selinux.Labeler
}

// New returns a [Manager] using r for path resolution and label for
// SELinux operations.
func New(r *paths.Resolver, label selinux.Labeler) *Manager {
	return &Manager{Paths: r, Label: label}
}

// Create ensures pkgname's storage directories exist for userid on uuid,
// covering whichever of flags is set, with mode 0751 and both owner and
// group set to the package's derived uid.
func (m *Manager) Create(uuid paths.VolumeUUID, pkgname string, userid idspace.UserID, flags idspace.StorageFlags, appid idspace.AppID, seinfo string) error {
	uid, err := idspace.Uid(userid, appid)
	if err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}

	if flags.Has(idspace.FlagCE) {
		path := m.Paths.DataUserPackagePath(uuid, userid, pkgname)
		if err := fsutil.PrepareDirStrict(path, 0751, int(uid), int(uid)); err != nil {
			return instderr.NewPath(instderr.FilesystemFailure, path.String(), err)
		}
		if err := m.Label.SetFileCon(path.String(), pkgname, seinfo, uid); err != nil {
			return instderr.NewPath(instderr.SELinuxFailure, path.String(), err)
		}
	}
	if flags.Has(idspace.FlagDE) {
		path := m.Paths.DataUserDePackagePath(uuid, userid, pkgname)
		if err := fsutil.PrepareDirStrict(path, 0751, int(uid), int(uid)); err != nil {
			return instderr.NewPath(instderr.FilesystemFailure, path.String(), err)
		}
		if err := m.Label.SetFileCon(path.String(), pkgname, seinfo, uid); err != nil {
			return instderr.NewPath(instderr.SELinuxFailure, path.String(), err)
		}
	}
	return nil
}

// ClearFlags selects which subtree of a package's data [Manager.Clear] wipes.
type ClearFlags uint8

const (
	// ClearAll wipes the whole per-storage-class directory contents.
	ClearAll ClearFlags = iota
	// ClearCacheOnly wipes only the "cache" subdirectory.
	ClearCacheOnly
	// ClearCodeCacheOnly wipes only the "code_cache" subdirectory.
	ClearCodeCacheOnly
)

func (c ClearFlags) suffix() string {
	switch c {
	case ClearCacheOnly:
		return "cache"
	case ClearCodeCacheOnly:
		return "code_cache"
	default:
		return ""
	}
}

// Clear removes the contents (not the directory itself) of pkgname's data
// under flags' storage classes. A missing directory is a no-op, not an
// error, matching clear_app_data's access(F_OK) guard.
func (m *Manager) Clear(uuid paths.VolumeUUID, pkgname string, userid idspace.UserID, flags idspace.StorageFlags, clear ClearFlags) error {
	suffix := clear.suffix()

	var errs []error
	if flags.Has(idspace.FlagCE) {
		path := m.Paths.DataUserPackagePath(uuid, userid, pkgname)
		if suffix != "" {
			path = path.Append(suffix)
		}
		if fsutil.Exists(path) {
			if err := fsutil.DeleteContents(path); err != nil {
				errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, path.String(), err))
			}
		}
	}
	if flags.Has(idspace.FlagDE) {
		path := m.Paths.DataUserDePackagePath(uuid, userid, pkgname)
		if suffix != "" {
			path = path.Append(suffix)
		}
		if fsutil.Exists(path) {
			if err := fsutil.DeleteContents(path); err != nil {
				errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, path.String(), err))
			}
		}
	}
	return joinNonNil(errs)
}

// Destroy removes pkgname's data directories entirely for the given
// storage classes.
func (m *Manager) Destroy(uuid paths.VolumeUUID, pkgname string, userid idspace.UserID, flags idspace.StorageFlags) error {
	var errs []error
	if flags.Has(idspace.FlagCE) {
		path := m.Paths.DataUserPackagePath(uuid, userid, pkgname)
		if err := fsutil.DeleteContentsAndDir(path); err != nil {
			errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, path.String(), err))
		}
	}
	if flags.Has(idspace.FlagDE) {
		path := m.Paths.DataUserDePackagePath(uuid, userid, pkgname)
		if err := fsutil.DeleteContentsAndDir(path); err != nil {
			errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, path.String(), err))
		}
	}
	return joinNonNil(errs)
}

// Restorecon reapplies the SELinux label policy assigns to pkgname's data
// directories. Restorecon failures on DE storage are logged and swallowed
// rather than surfaced, matching the historical behaviour of the platform
// this daemon is modeled on: an in-code TODO there says the DE result
// should eventually count, and this preserves that quirk pending it.
func (m *Manager) Restorecon(uuid paths.VolumeUUID, pkgname string, userid idspace.UserID, flags idspace.StorageFlags, appid idspace.AppID, seinfo string) error {
	if pkgname == "" || seinfo == "" {
		return instderr.New(instderr.InvalidArgument, os.ErrInvalid)
	}
	uid, err := idspace.Uid(userid, appid)
	if err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}

	var res error
	if flags.Has(idspace.FlagCE) {
		path := m.Paths.DataUserPackagePath(uuid, userid, pkgname)
		if err := m.Label.RestoreconPkgdir(path.String(), seinfo, uid, selinux.RestoreconRecurse); err != nil {
			res = instderr.NewPath(instderr.SELinuxFailure, path.String(), err)
		}
	}
	if flags.Has(idspace.FlagDE) {
		path := m.Paths.DataUserDePackagePath(uuid, userid, pkgname)
		_ = m.Label.RestoreconPkgdir(path.String(), seinfo, uid, selinux.RestoreconRecurse)
	}
	return res
}

func joinNonNil(errs []error) error { return errors.Join(errs...) }
