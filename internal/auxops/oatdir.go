package auxops

import (
	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/fhs"
	"droid.dev/instd/internal/fsutil"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/paths"
)

// apkPathValidator permits the storage locations a caller-supplied APK or
// oat directory path is legitimately allowed to name: an installed
// package's own code directory, a preloaded system app, or a mounted
// ASEC container.
func (m *Manager) apkPathValidator() *paths.Validator {
	return paths.NewValidator(m.Cfg.DataRoot.Append("app"), fhs.AbsSystemApp, fhs.AbsAsecRoot)
}

// CreateOatDir creates oatDir and its per-instruction-set subdirectory,
// owned by system:install, and relabels oatDir. It corresponds to
// create_oat_dir.
func (m *Manager) CreateOatDir(oatDir *check.Absolute, isa string) error {
	if err := m.apkPathValidator().Check(oatDir); err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}
	if err := fsutil.PrepareDir(oatDir, 0771, aidSystem, aidInstall); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, oatDir.String(), err)
	}
	if err := m.Label.Restorecon(oatDir.String(), 0); err != nil {
		return instderr.NewPath(instderr.SELinuxFailure, oatDir.String(), err)
	}
	isaDir := oatDir.Append(isa)
	if err := fsutil.PrepareDir(isaDir, 0771, aidSystem, aidInstall); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, isaDir.String(), err)
	}
	return nil
}

// RmPackageDir deletes apkPath and everything beneath it. It corresponds
// to rm_package_dir.
func (m *Manager) RmPackageDir(apkPath *check.Absolute) error {
	if err := m.apkPathValidator().Check(apkPath); err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}
	if err := fsutil.DeleteContentsAndDir(apkPath); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, apkPath.String(), err)
	}
	return nil
}
