// Package idmap computes overlay resource-mapping cache paths and
// orchestrates the idmap child process that produces them.
package idmap

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"

	"droid.dev/instd/internal/dexopt"
	"droid.dev/instd/internal/dexopt/argv"
	"droid.dev/instd/internal/elog"
	"droid.dev/instd/internal/instderr"
)

const (
	prefix = "/data/resource-cache/"
	suffix = "@idmap"
)

// ErrFlatten is returned by [Flatten] when overlayPath is not usable.
type ErrFlatten struct{ Path string }

func (e *ErrFlatten) Error() string { return fmt.Sprintf("idmap: cannot flatten path %q", e.Path) }

// Flatten transforms an absolute overlay APK path into its resource-cache
// idmap filename, turning /a/b/c.apk into prefix + "a@b@c.apk" + suffix.
// It rejects non-absolute input and, since Go strings are bounded by an
// int rather than size_t, the length check here guards against exceeding
// [math.MaxInt] rather than replicating the original's size_t overflow
// arithmetic directly.
func Flatten(prefix, suffix, overlayPath string) (string, error) {
	if len(overlayPath) < 2 || overlayPath[0] != '/' {
		return "", &ErrFlatten{overlayPath}
	}
	if len(prefix) > math.MaxInt-len(overlayPath) || len(prefix)+len(overlayPath) > math.MaxInt-len(suffix) {
		return "", &ErrFlatten{overlayPath}
	}

	body := strings.ReplaceAll(overlayPath[1:], "/", "@")
	return prefix + body + suffix, nil
}

// Orchestrator produces idmap cache entries.
type Orchestrator struct {
	IdmapPath string
	Msg       elog.Msg
	// SelfPath is the path to this binary, re-exec'd to perform the
	// privilege-drop-then-exec sequence shared with the dexopt child.
	SelfPath string
}

// New returns an [Orchestrator].
func New(idmapPath string, msg elog.Msg) *Orchestrator {
	return &Orchestrator{IdmapPath: idmapPath, Msg: msg}
}

func (o *Orchestrator) selfPath() (string, error) {
	if o.SelfPath != "" {
		return o.SelfPath, nil
	}
	return os.Executable()
}

// Run produces the idmap cache entry for the given target/overlay pair,
// owned by uid, and returns its path on success.
func (o *Orchestrator) Run(targetApk, overlayApk string, uid uint32) (string, error) {
	idmapPath, err := Flatten(prefix, suffix, overlayApk)
	if err != nil {
		return "", instderr.New(instderr.InvalidArgument, err)
	}

	os.Remove(idmapPath)
	f, err := os.OpenFile(idmapPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", instderr.NewPath(instderr.FilesystemFailure, idmapPath, err)
	}
	defer f.Close()

	fail := func(err error) (string, error) {
		os.Remove(idmapPath)
		return "", err
	}

	if err := f.Chown(1000, int(uid)); err != nil {
		return fail(instderr.NewPath(instderr.FilesystemFailure, idmapPath, err))
	}
	if err := f.Chmod(0644); err != nil {
		return fail(instderr.NewPath(instderr.FilesystemFailure, idmapPath, err))
	}

	const idmapChildFD = 3
	argvSlice := argv.BuildIdmap(o.IdmapPath, targetApk, overlayApk, idmapChildFD)

	selfPath, err := o.selfPath()
	if err != nil {
		return fail(instderr.New(instderr.FilesystemFailure, err))
	}

	params := dexopt.ChildParams{UID: uid, Argv: argvSlice, LockFD: idmapChildFD}
	cmd := exec.Command(selfPath)
	cmd.ExtraFiles = []*os.File{f}
	cmd.Env = append(os.Environ(), params.EncodeEnv()...)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr

	o.Msg.Suspend()
	runErr := cmd.Run()
	o.Msg.Resume()

	if runErr != nil {
		return fail(instderr.NewPath(instderr.ChildFailure, idmapPath, runErr))
	}
	return idmapPath, nil
}
