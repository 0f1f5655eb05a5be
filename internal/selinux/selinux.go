// Package selinux defines the interface for labelling app data
// directories. The Linux implementation checks that each path exists and
// changes no security context; every other platform gets a no-op that lets
// the rest of the daemon build and test on a development host.
package selinux

// RestoreconFlags selects restorecon behaviour.
type RestoreconFlags uint32

const (
	// RestoreconRecurse relabels a directory tree recursively.
	RestoreconRecurse RestoreconFlags = 1 << iota
)

// Labeler sets and restores SELinux security contexts on app data paths.
type Labeler interface {
	// SetFileCon assigns the security context computed for pkgname/seinfo/uid
	// to path.
	SetFileCon(path, pkgname, seinfo string, uid uint32) error

	// Restorecon reapplies the security context policy assigns to path.
	Restorecon(path string, flags RestoreconFlags) error

	// RestoreconPkgdir reapplies the app-data security context policy
	// assigns to a package directory, taking pkgname/seinfo/uid into
	// account the way [Labeler.SetFileCon] does.
	RestoreconPkgdir(path, seinfo string, uid uint32, flags RestoreconFlags) error
}
