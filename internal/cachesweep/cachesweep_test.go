package cachesweep

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/config"
	"droid.dev/instd/internal/elog"
	"droid.dev/instd/internal/paths"
)

func writeAgedFile(t *testing.T, path string, size int, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestSessionFreeEvictsOldestFirst(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "pkg1", "cache", "old.bin")
	newFile := filepath.Join(dir, "pkg2", "cache", "new.bin")
	writeAgedFile(t, oldFile, 100, 48*time.Hour)
	writeAgedFile(t, newFile, 100, 1*time.Hour)

	s := NewSession(elog.NewMsg(false))
	s.AddCacheFiles(check.MustAbs(dir), "cache")

	freed := s.Free(100)
	if freed != 100 {
		t.Fatalf("Free(100) = %d, want 100", freed)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("expected the older file to be evicted first")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Error("expected the newer file to survive")
	}
}

func TestSessionFreeStopsWhenCandidatesExhausted(t *testing.T) {
	dir := t.TempDir()
	writeAgedFile(t, filepath.Join(dir, "pkg1", "cache", "a.bin"), 50, time.Hour)

	s := NewSession(elog.NewMsg(false))
	s.AddCacheFiles(check.MustAbs(dir), "cache")

	freed := s.Free(1000)
	if freed != 50 {
		t.Fatalf("Free(1000) = %d, want 50 (all available candidates)", freed)
	}
}

func TestAddCacheFilesIgnoresMissingRoot(t *testing.T) {
	s := NewSession(elog.NewMsg(false))
	s.AddCacheFiles(check.MustAbs(filepath.Join(t.TempDir(), "missing")), "cache")
	if freed := s.Free(100); freed != 0 {
		t.Fatalf("Free on empty session = %d, want 0", freed)
	}
}

func newTestSweeper(t *testing.T, root string) (*Sweeper, *paths.Resolver) {
	t.Helper()
	cfg := &config.Config{DataRoot: check.MustAbs(root)}
	r := paths.New(cfg)
	return New(r, elog.NewMsg(false)), r
}

func TestFreeCacheReturnsEarlyWhenAlreadyFree(t *testing.T) {
	root := t.TempDir()
	sw, r := newTestSweeper(t, root)

	stale := r.DataUserPath("", 0).Append("com.example", "cache", "stale.bin").String()
	writeAgedFile(t, stale, 100, 48*time.Hour)

	sw.Statfs = func(path *check.Absolute) (free, total uint64, err error) {
		return 1 << 30, 1 << 30, nil
	}

	if err := sw.FreeCache("", 100); err != nil {
		t.Fatalf("FreeCache = %v, want nil", err)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Error("expected the sweep to be skipped entirely when already above target")
	}
}

func TestFreeCacheSweepsUntilTargetMet(t *testing.T) {
	root := t.TempDir()
	sw, r := newTestSweeper(t, root)

	oldFile := r.DataUserPath("", 0).Append("com.example", "cache", "old.bin").String()
	writeAgedFile(t, oldFile, 100, 48*time.Hour)

	calls := 0
	sw.Statfs = func(path *check.Absolute) (free, total uint64, err error) {
		calls++
		if calls == 1 {
			return 400, 1000, nil
		}
		return 500, 1000, nil
	}

	err := sw.FreeCache("", 500)
	if err != nil {
		t.Fatalf("FreeCache = %v, want nil", err)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("expected the stale cache file to be evicted by the sweep")
	}
}

func TestFreeCacheReportsShortfallWhenCandidatesExhausted(t *testing.T) {
	root := t.TempDir()
	sw, _ := newTestSweeper(t, root)

	sw.Statfs = func(path *check.Absolute) (free, total uint64, err error) {
		return 100, 1000, nil
	}

	if err := sw.FreeCache("", 500); err == nil {
		t.Fatal("expected a shortfall error when no candidates exist to close the gap")
	}
}

func TestFreeCacheSkipsMediaDirMissingAndroidData(t *testing.T) {
	root := t.TempDir()
	sw, r := newTestSweeper(t, root)

	// A secondary cache file to actually close the gap, so the sweep has
	// something to evict besides the media directory under test.
	userFile := r.DataUserPath("", 0).Append("com.example", "cache", "old.bin").String()
	writeAgedFile(t, userFile, 200, 48*time.Hour)

	// A package "cache" dir under media user 0, whose media root never grew
	// an Android/data subtree: lookup_media_dir's sanity check should exclude
	// that whole user media root, mirroring free_cache being asked to sweep a
	// media dir that was never set up.
	mediaCache := filepath.Join(root, "media", "0", "com.example", "cache", "orphan.bin")
	writeAgedFile(t, mediaCache, 200, 72*time.Hour)

	calls := 0
	sw.Statfs = func(path *check.Absolute) (free, total uint64, err error) {
		calls++
		if calls == 1 {
			return 0, 1000, nil
		}
		return 200, 1000, nil
	}

	if err := sw.FreeCache("", 200); err != nil {
		t.Fatalf("FreeCache = %v, want nil", err)
	}
	if _, err := os.Stat(userFile); !os.IsNotExist(err) {
		t.Error("expected the per-user cache file to be evicted")
	}
	if _, err := os.Stat(mediaCache); err != nil {
		t.Error("expected the orphaned media cache file to survive, its root lacks Android/data")
	}
}

func TestFreeCacheSkipsNonNumericSecondaryUserDir(t *testing.T) {
	root := t.TempDir()
	sw, _ := newTestSweeper(t, root)

	stray := filepath.Join(root, "user", "lost+found", "com.example", "cache", "stray.bin")
	writeAgedFile(t, stray, 200, 48*time.Hour)

	sw.Statfs = func(path *check.Absolute) (free, total uint64, err error) {
		return 0, 1000, nil
	}

	if err := sw.FreeCache("", 200); err == nil {
		t.Fatal("expected a shortfall error: the only candidate lives under a non-numeric user directory")
	}
	if _, err := os.Stat(stray); err != nil {
		t.Error("expected the non-numeric user directory's cache file to be left alone")
	}
}
