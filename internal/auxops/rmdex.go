package auxops

import (
	"os"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/instderr"
)

// RmDex removes the dalvik-cache artifact belonging to apkPath and isa, if
// any. A missing artifact is not an error. It corresponds to rm_dex.
func (m *Manager) RmDex(apkPath, isa string) error {
	abs, err := check.NewAbs(apkPath)
	if err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}
	if err := m.apkPathValidator().Check(abs); err != nil {
		return instderr.New(instderr.InvalidArgument, err)
	}
	dexPath := m.Paths.DalvikCachePath(isa, apkPath, ".dex")
	if err := os.Remove(dexPath.String()); err != nil && !os.IsNotExist(err) {
		return instderr.NewPath(instderr.FilesystemFailure, dexPath.String(), err)
	}
	return nil
}
