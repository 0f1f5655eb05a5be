package auxops

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"droid.dev/instd/internal/fhs"
	"droid.dev/instd/internal/idspace"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/paths"
)

// SizeRequest describes the inputs get_app_size needs to attribute a
// package's on-disk footprint to code, data, cache and ASEC size.
type SizeRequest struct {
	Uuid    paths.VolumeUUID
	Pkgname string
	// UserID selects a single user, or -1 to sum across every known user.
	UserID         int64
	Flags          idspace.StorageFlags
	ApkPath        string
	LibDirPath     string // "" or "!" means none
	FwdLockApkPath string // "" or "!" means none
	AsecPath       string // "" or "!" means none
	InstructionSet string
}

// Sizes reports the accounted-for bytes in each category.
type Sizes struct {
	CodeSize, DataSize, CacheSize, AsecSize int64
}

func present(v string) bool { return v != "" && v != "!" }

// GetAppSize computes req's per-category sizes, mirroring get_app_size:
// the apk itself, an optional forward-locked apk, the compiled dex cache
// entry and any native library directory all count as code; everything
// else under a package's CE data directory is data, except its "cache"
// subtree, which is cache. It corresponds to get_app_size.
func (m *Manager) GetAppSize(req SizeRequest) (Sizes, error) {
	var sz Sizes

	if req.ApkPath != "" && !strings.HasPrefix(req.ApkPath, fhs.SystemApp) && !strings.HasPrefix(req.ApkPath, fhs.AsecRoot) {
		sz.CodeSize += pathSize(req.ApkPath)
	}
	if present(req.FwdLockApkPath) {
		sz.CodeSize += pathSize(req.FwdLockApkPath)
	}
	if req.ApkPath != "" && req.InstructionSet != "" {
		dexPath := m.Paths.DalvikCachePath(req.InstructionSet, req.ApkPath, ".dex")
		if fi, err := os.Stat(dexPath.String()); err == nil {
			sz.CodeSize += fi.Size()
		}
	}
	if present(req.LibDirPath) {
		sz.CodeSize += dirSize(req.LibDirPath)
	}
	if present(req.AsecPath) {
		if fi, err := os.Stat(req.AsecPath); err == nil {
			sz.AsecSize += fi.Size()
		}
	}

	if !req.Flags.Has(idspace.FlagCE) {
		return sz, nil
	}

	users, err := m.resolveUsers(req.Uuid, req.UserID)
	if err != nil {
		return sz, err
	}

	for _, user := range users {
		pkgdir := m.Paths.DataUserPackagePath(req.Uuid, user, req.Pkgname)
		entries, err := os.ReadDir(pkgdir.String())
		if err != nil {
			m.Msg.Verbosef("aux: failed to open %s: %v", pkgdir, err)
			continue
		}
		for _, de := range entries {
			name := de.Name()
			full := pkgdir.Append(name)

			if de.Type()&os.ModeSymlink != 0 {
				if name == "lib" {
					if fi, err := os.Lstat(full.String()); err == nil {
						sz.CodeSize += fi.Size()
					}
				}
				continue
			}

			if de.IsDir() {
				var statSize int64
				if fi, err := os.Lstat(full.String()); err == nil {
					statSize = fi.Size()
				}
				dirTotal := dirSize(full.String()) + statSize
				switch name {
				case "lib":
					sz.CodeSize += dirTotal
				case "cache":
					sz.CacheSize += dirTotal
				default:
					sz.DataSize += dirTotal
				}
				continue
			}

			if fi, err := os.Lstat(full.String()); err == nil {
				sz.DataSize += fi.Size()
			}
		}
	}

	return sz, nil
}

// resolveUsers returns the users to sum for userID: either a single
// selected user, or, when userID is -1, every user [paths.Resolver.KnownUsers]
// reports for uuid.
func (m *Manager) resolveUsers(uuid paths.VolumeUUID, userID int64) ([]idspace.UserID, error) {
	if userID >= 0 {
		return []idspace.UserID{idspace.UserID(userID)}, nil
	}
	users, err := m.Paths.KnownUsers(uuid)
	if err != nil {
		return nil, instderr.New(instderr.FilesystemFailure, err)
	}
	return users, nil
}

func pathSize(p string) int64 {
	fi, err := os.Stat(p)
	if err != nil {
		return 0
	}
	sz := fi.Size()
	if fi.IsDir() {
		sz += dirSize(p)
	}
	return sz
}

// dirSize sums the size of every entry beneath root, recursively, not
// counting root itself. It corresponds to calculate_dir_size.
func dirSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == root {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		total += fi.Size()
		return nil
	})
	return total
}
