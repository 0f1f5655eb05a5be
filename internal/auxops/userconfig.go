package auxops

import (
	"errors"
	"strconv"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/fhs"
	"droid.dev/instd/internal/fsutil"
	"droid.dev/instd/internal/idspace"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/paths"
)

func userConfigPath(userid idspace.UserID) *check.Absolute {
	return fhs.AbsMiscUser.Append(strconv.FormatUint(uint64(userid), 10))
}

// MakeUserConfig ensures the per-user configuration directory used to
// hold lock settings and similar state exists for userid. It corresponds
// to make_user_config.
func (m *Manager) MakeUserConfig(userid idspace.UserID) error {
	dir := userConfigPath(userid)
	if err := fsutil.EnsureDirAll(dir, 0700, aidSystem, aidSystem); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, dir.String(), err)
	}
	return nil
}

// DeleteUser removes every trace of userid's storage: CE and DE app data,
// shared/media storage and, for internal storage only, the user's
// configuration directory. It corresponds to delete_user.
func (m *Manager) DeleteUser(uuid paths.VolumeUUID, userid idspace.UserID) error {
	var errs []error

	if err := fsutil.DeleteContentsAndDir(m.Paths.DataUserPath(uuid, userid)); err != nil {
		errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, m.Paths.DataUserPath(uuid, userid).String(), err))
	}
	if err := fsutil.DeleteContentsAndDir(m.Paths.DataUserDePath(uuid, userid)); err != nil {
		errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, m.Paths.DataUserDePath(uuid, userid).String(), err))
	}
	if err := fsutil.DeleteContentsAndDir(m.Paths.DataMediaPath(uuid, userid)); err != nil {
		errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, m.Paths.DataMediaPath(uuid, userid).String(), err))
	}

	// Config paths only exist on internal storage.
	if uuid.IsInternal() {
		cfgDir := userConfigPath(userid)
		if err := fsutil.DeleteContentsAndDir(cfgDir); err != nil {
			errs = append(errs, instderr.NewPath(instderr.FilesystemFailure, cfgDir.String(), err))
		}
	}

	return errors.Join(errs...)
}
