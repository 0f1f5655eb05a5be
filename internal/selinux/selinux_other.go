//go:build !linux

package selinux

// New returns a [Labeler] that performs no labeling, used on non-Linux
// development hosts.
func New() Labeler { return noopLabeler{} }

type noopLabeler struct{}

func (noopLabeler) SetFileCon(string, string, string, uint32) error         { return nil }
func (noopLabeler) Restorecon(string, RestoreconFlags) error                { return nil }
func (noopLabeler) RestoreconPkgdir(string, string, uint32, RestoreconFlags) error { return nil }
