//go:build linux

package selinux

import "os"

// New returns the Linux [Labeler].
//
// This build does not link libselinux: each setfilecon/restorecon call
// only checks that path exists and sets no security context, which is
// sufficient for hosts running without an SELinux policy loaded.
func New() Labeler { return linuxLabeler{} }

type linuxLabeler struct{}

func (linuxLabeler) SetFileCon(path, _, _ string, _ uint32) error {
	if _, err := os.Lstat(path); err != nil {
		return err
	}
	return nil
}

func (linuxLabeler) Restorecon(path string, _ RestoreconFlags) error {
	if _, err := os.Lstat(path); err != nil {
		return err
	}
	return nil
}

func (linuxLabeler) RestoreconPkgdir(path, _ string, _ uint32, _ RestoreconFlags) error {
	if _, err := os.Lstat(path); err != nil {
		return err
	}
	return nil
}
