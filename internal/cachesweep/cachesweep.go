// Package cachesweep implements free_cache: a best-effort sweep that
// evicts a device's least-recently-modified app cache files until either
// enough free space is reclaimed or there is nothing left to evict.
package cachesweep

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	humanize "github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2/simplelru"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/elog"
	"droid.dev/instd/internal/fsutil"
	"droid.dev/instd/internal/paths"
)

// entry is one file eligible for eviction.
type entry struct {
	path  *check.Absolute
	size  int64
	mtime int64
}

// Session accumulates eviction candidates and evicts them oldest-mtime
// first on demand. It corresponds to the opaque cache-collection
// accumulator: callers add roots to scan, ask it to free N bytes, then
// discard it.
type Session struct {
	msg        elog.Msg
	candidates []entry
	lru        *lru.LRU[int, entry]
	total      int64
	sealed     bool
}

// NewSession returns an empty [Session].
func NewSession(msg elog.Msg) *Session {
	return &Session{msg: msg}
}

// addFile registers path as an eviction candidate.
func (s *Session) addFile(path *check.Absolute, fi os.FileInfo) {
	s.candidates = append(s.candidates, entry{path: path, size: fi.Size(), mtime: fi.ModTime().Unix()})
	s.total += fi.Size()
}

// seal sorts every accumulated candidate oldest-mtime first and loads them
// into the LRU in that order, so a never-touched [lru.LRU.RemoveOldest]
// evicts in exactly that order.
func (s *Session) seal() {
	if s.sealed {
		return
	}
	s.sealed = true
	sort.Slice(s.candidates, func(i, j int) bool { return s.candidates[i].mtime < s.candidates[j].mtime })
	// capacity 0 would panic; simplelru requires a positive size, so
	// evictions are driven entirely by explicit RemoveOldest calls with
	// an effectively unbounded cap.
	l, _ := lru.NewLRU[int, entry](1<<30, nil)
	for i, e := range s.candidates {
		l.Add(i, e)
	}
	s.lru = l
}

// AddCacheFiles walks every immediate subdirectory of root looking for a
// directory named subdir (normally "cache") and registers every regular
// file found beneath it as an eviction candidate. Candidates are put in
// oldest-mtime-first order when the sweep first evicts, not as they are
// added.
func (s *Session) AddCacheFiles(root *check.Absolute, subdir string) {
	entries, err := os.ReadDir(root.String())
	if err != nil {
		return
	}
	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		cacheDir := root.Append(de.Name(), subdir)
		s.walkFiles(cacheDir)
	}
}

func (s *Session) walkFiles(root *check.Absolute) {
	_ = filepath.WalkDir(root.String(), func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		abs, err := check.NewAbs(p)
		if err != nil {
			return nil
		}
		s.addFile(abs, fi)
		return nil
	})
}

// Free evicts the oldest candidates until total accumulated size drops by
// at least need bytes, or candidates run out. It returns the number of
// bytes actually freed.
func (s *Session) Free(need int64) int64 {
	s.seal()
	var freed int64
	for freed < need {
		_, e, ok := s.lru.RemoveOldest()
		if !ok {
			break
		}
		if err := os.Remove(e.path.String()); err != nil {
			s.msg.Verbosef("cachesweep: failed to remove %s: %v", e.path.String(), err)
			continue
		}
		freed += e.size
		s.msg.Verbosef("cachesweep: reclaimed %s from %s", humanize.Bytes(uint64(e.size)), e.path.String())
	}
	return freed
}

// Sweeper scans a volume's cache directories and evicts entries until the
// volume has at least the requested free space, mirroring free_cache.
type Sweeper struct {
	Paths *paths.Resolver
	Msg   elog.Msg

	// Statfs reports free and total bytes available at path. Defaults to
	// [fsutil.Statfs]; overridable so tests can drive FreeCache's
	// early-return and actual-sweep paths without a real filesystem.
	Statfs func(path *check.Absolute) (free, total uint64, err error)
}

// New returns a [Sweeper].
func New(r *paths.Resolver, msg elog.Msg) *Sweeper {
	return &Sweeper{Paths: r, Msg: msg, Statfs: fsutil.Statfs}
}

func (sw *Sweeper) statfs(path *check.Absolute) (free, total uint64, err error) {
	if sw.Statfs != nil {
		return sw.Statfs(path)
	}
	return fsutil.Statfs(path)
}

// FreeCache attempts to ensure at least freeSize bytes are free on uuid's
// volume. It returns nil if that much space is free on return, and an
// error otherwise. Per-entry eviction failures are logged and do not
// abort the sweep.
func (sw *Sweeper) FreeCache(uuid paths.VolumeUUID, freeSize int64) error {
	dataPath := sw.Paths.DataPath(uuid)

	free, _, err := sw.statfs(dataPath)
	if err != nil {
		return err
	}
	if int64(free) >= freeSize {
		return nil
	}

	session := NewSession(sw.Msg)

	if uuid.IsInternal() {
		session.AddCacheFiles(sw.Paths.DataUserPath(uuid, 0), "cache")
	}

	sw.addSecondaryUserCache(session, dataPath.Append("user"))
	sw.addMediaCache(session, dataPath.Append("media"))

	need := freeSize - int64(free)
	session.Free(need)

	free, _, err = sw.statfs(dataPath)
	if err != nil {
		return err
	}
	if int64(free) < freeSize {
		return errFreeCacheShortfall
	}
	return nil
}

var errFreeCacheShortfall = shortfallError{}

type shortfallError struct{}

func (shortfallError) Error() string { return "cachesweep: unable to free enough space" }

// addSecondaryUserCache walks every numeric-named subdirectory of
// dataUserRoot, treating each as a per-user cache root. Only entries whose
// directory type is reported directly by readdir are trusted: unlike a
// hardened implementation this deliberately does not fall back to an
// extra stat call when the type comes back unknown, preserving the
// original tool's behaviour on filesystems where that matters.
func (sw *Sweeper) addSecondaryUserCache(session *Session, dataUserRoot *check.Absolute) {
	entries, err := os.ReadDir(dataUserRoot.String())
	if err != nil {
		return
	}
	for _, de := range entries {
		if de.Type()&os.ModeDir == 0 {
			continue
		}
		name := de.Name()
		if name == "" || !strings.ContainsAny(name[:1], "0123456789") {
			continue
		}
		session.AddCacheFiles(dataUserRoot.Append(name), "cache")
	}
}

// addMediaCache walks mediaRoot's numeric-named user subdirectories,
// skipping any that lack both "Android" and "Android/data", matching
// lookup_media_dir's sanity check that the directory really is a media
// root and not something else mounted in its place.
func (sw *Sweeper) addMediaCache(session *Session, mediaRoot *check.Absolute) {
	entries, err := os.ReadDir(mediaRoot.String())
	if err != nil {
		return
	}
	for _, de := range entries {
		if de.Type()&os.ModeDir == 0 {
			continue
		}
		name := de.Name()
		if name == "" || !strings.ContainsAny(name[:1], "0123456789") {
			continue
		}
		userMedia := mediaRoot.Append(name)
		if !fsutil.Exists(userMedia.Append("Android")) || !fsutil.Exists(userMedia.Append("Android", "data")) {
			continue
		}
		session.AddCacheFiles(userMedia, "cache")
	}
}
