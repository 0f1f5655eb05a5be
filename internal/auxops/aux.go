// Package auxops implements the smaller, largely independent operations that
// round out the daemon's surface once app-data lifecycle, moves and
// dexopt are covered: native library relinking, oat directory upkeep,
// size accounting, boot bookkeeping, per-user config state and the
// legacy update-commands migration.
package auxops

import (
	"droid.dev/instd/internal/config"
	"droid.dev/instd/internal/elog"
	"droid.dev/instd/internal/paths"
	"droid.dev/instd/internal/selinux"
)

// well-known uids these operations chown to; copied from
// android_filesystem_config.h and must never be changed.
const (
	aidSystem  = 1000
	aidInstall = 9987
)

// Manager groups the auxiliary operations, sharing the same path
// resolution, labeling and logging as the rest of the daemon.
type Manager struct {
	Cfg   *config.Config
	Paths *paths.Resolver
	Label selinux.Labeler
	Msg   elog.Msg
}

// New returns a [Manager].
func New(cfg *config.Config, r *paths.Resolver, label selinux.Labeler, msg elog.Msg) *Manager {
	return &Manager{Cfg: cfg, Paths: r, Label: label, Msg: msg}
}
