// Package paths resolves the on-disk locations of per-app storage and
// validates that a caller-supplied path falls within one of them before it
// is allowed anywhere near a syscall.
package paths

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/config"
	"droid.dev/instd/internal/fhs"
	"droid.dev/instd/internal/idspace"
)

// VolumeUUID identifies a storage volume. The empty string and the literal
// "primary_physical" both refer to internal (non-adoptable) storage.
type VolumeUUID string

// IsInternal reports whether uuid refers to non-adoptable internal storage.
func (uuid VolumeUUID) IsInternal() bool { return uuid == "" || uuid == "primary_physical" }

// Resolver computes checked, absolute paths for every storage location the
// daemon operates on. Apart from [Resolver.KnownUsers], which lists a
// directory, it never touches the filesystem itself.
type Resolver struct {
	cfg *config.Config
}

// New returns a [Resolver] bound to cfg.
func New(cfg *config.Config) *Resolver { return &Resolver{cfg: cfg} }

func (r *Resolver) volumeRoot(uuid VolumeUUID) *check.Absolute {
	if uuid.IsInternal() {
		return r.cfg.DataRoot
	}
	return check.MustAbs(fmt.Sprintf("/mnt/expand/%s", string(uuid)))
}

// DataUserPath returns the CE data root for userid on uuid, e.g.
// /data/data for user 0 on internal storage or /data/user/10 for a
// secondary user.
func (r *Resolver) DataUserPath(uuid VolumeUUID, userid idspace.UserID) *check.Absolute {
	if userid == 0 && uuid.IsInternal() {
		return r.volumeRoot(uuid).Append("data")
	}
	return r.volumeRoot(uuid).Append("user", fmt.Sprintf("%d", userid))
}

// DataUserDePath returns the DE data root for userid on uuid.
func (r *Resolver) DataUserDePath(uuid VolumeUUID, userid idspace.UserID) *check.Absolute {
	return r.volumeRoot(uuid).Append("user_de", fmt.Sprintf("%d", userid))
}

// DataUserPackagePath returns pkgname's CE data directory.
func (r *Resolver) DataUserPackagePath(uuid VolumeUUID, userid idspace.UserID, pkgname string) *check.Absolute {
	return r.DataUserPath(uuid, userid).Append(pkgname)
}

// KnownUsers returns every user with CE storage on uuid: every numeric
// subdirectory of its "user" directory, plus the always-present owner
// (user 0). This stands in for get_known_users, which on the platform
// this daemon is modeled on consults the package manager's own user
// registry.
func (r *Resolver) KnownUsers(uuid VolumeUUID) ([]idspace.UserID, error) {
	userRoot := r.DataUserPath(uuid, 1).Dir()
	seen := map[idspace.UserID]bool{0: true}

	entries, err := os.ReadDir(userRoot.String())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		n, err := strconv.ParseUint(de.Name(), 10, 32)
		if err != nil {
			continue
		}
		seen[idspace.UserID(n)] = true
	}

	users := make([]idspace.UserID, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, nil
}

// DataUserDePackagePath returns pkgname's DE data directory.
func (r *Resolver) DataUserDePackagePath(uuid VolumeUUID, userid idspace.UserID, pkgname string) *check.Absolute {
	return r.DataUserDePath(uuid, userid).Append(pkgname)
}

// DataAppPackagePath returns the installed code directory for a package
// directory name (package name plus installer-assigned random suffix).
func (r *Resolver) DataAppPackagePath(uuid VolumeUUID, dataAppName string) *check.Absolute {
	return r.volumeRoot(uuid).Append("app", dataAppName)
}

// DataMediaPath returns the shared/emulated storage root for userid on uuid.
func (r *Resolver) DataMediaPath(uuid VolumeUUID, userid idspace.UserID) *check.Absolute {
	return r.volumeRoot(uuid).Append("media", fmt.Sprintf("%d", userid))
}

// DataPath returns the top-level data directory of uuid, the one holding
// its user, user_de, media and app directories.
func (r *Resolver) DataPath(uuid VolumeUUID) *check.Absolute {
	if uuid.IsInternal() {
		return r.cfg.DataRoot
	}
	return r.volumeRoot(uuid)
}

// DalvikCachePath returns the path a compiled artifact for apkPath and isa
// would occupy in the flattened dalvik-cache directory.
func (r *Resolver) DalvikCachePath(isa, apkPath, suffix string) *check.Absolute {
	return fhs.AbsDalvikCache.Append(isa, flattenApkPath(apkPath)+suffix)
}

func flattenApkPath(apkPath string) string {
	out := make([]byte, 0, len(apkPath)+1)
	out = append(out, '@')
	for i := 1; i < len(apkPath); i++ {
		c := apkPath[i]
		if c == '/' {
			c = '@'
		}
		out = append(out, c)
	}
	return string(out)
}

// AsecPath returns the mount path of an ASEC container by id.
func (r *Resolver) AsecPath(id string) *check.Absolute {
	return check.MustAbs(r.cfg.AsecMountRoot.Append(id).String())
}

// Validator restricts a path to a fixed set of permitted prefixes, refusing
// to resolve anything that escapes them.
type Validator struct {
	prefixes []*check.Absolute
}

// NewValidator returns a [Validator] permitting descendants of prefixes.
func NewValidator(prefixes ...*check.Absolute) *Validator { return &Validator{prefixes: prefixes} }

// ErrOutsidePermittedRoots is returned by [Validator.Check] when a path is
// not a descendant of any permitted prefix.
type ErrOutsidePermittedRoots struct{ Pathname string }

func (e *ErrOutsidePermittedRoots) Error() string {
	return fmt.Sprintf("path %q is outside all permitted roots", e.Pathname)
}

// Check returns an error unless a is a descendant of one of v's prefixes.
func (v *Validator) Check(a *check.Absolute) error {
	for _, p := range v.prefixes {
		if a.HasPrefix(p) {
			return nil
		}
	}
	return &ErrOutsidePermittedRoots{a.String()}
}

// DefaultValidator returns the [Validator] permitting the well-known
// storage roots any legitimate caller-supplied path must fall under.
func DefaultValidator(cfg *config.Config) *Validator {
	return NewValidator(
		cfg.DataRoot.Append("user"),
		cfg.DataRoot.Append("user_de"),
		cfg.DataRoot.Append("app"),
		cfg.DataRoot.Append("media"),
		fhs.AbsDalvikCache,
		fhs.AbsResourceCache,
		fhs.AbsAsecRoot,
		cfg.AsecMountRoot,
	)
}
