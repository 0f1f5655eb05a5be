//go:build linux

package dexopt

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"
)

// ChildParams describes the privilege-drop-then-exec sequence a forked
// dexopt child must perform. It travels to the child entirely through its
// environment and inherited file descriptors, never as a shared-memory
// value, so the child can be a genuinely separate exec of this same
// binary rather than a forked Go runtime with live goroutines.
type ChildParams struct {
	UID          uint32
	Argv         []string
	LockFD       int
	BootComplete bool
}

// EncodeEnv renders p as the environment variables [RunChild] expects.
func (p ChildParams) EncodeEnv() []string {
	argv, _ := json.Marshal(p.Argv)
	bg := "0"
	if p.BootComplete {
		bg = "1"
	}
	return []string{
		EnvChildMarker + "=1",
		EnvChildUID + "=" + strconv.FormatUint(uint64(p.UID), 10),
		EnvChildArgv + "=" + string(argv),
		EnvChildLockFD + "=" + strconv.Itoa(p.LockFD),
		EnvChildBg + "=" + bg,
	}
}

// DecodeChildParams reads [ChildParams] back out of the current process's
// environment, called by the re-exec'd child.
func DecodeChildParams() (ChildParams, error) {
	var p ChildParams
	uid, err := strconv.ParseUint(os.Getenv(EnvChildUID), 10, 32)
	if err != nil {
		return p, fmt.Errorf("dexopt: bad %s: %w", EnvChildUID, err)
	}
	p.UID = uint32(uid)

	if err := json.Unmarshal([]byte(os.Getenv(EnvChildArgv)), &p.Argv); err != nil {
		return p, fmt.Errorf("dexopt: bad %s: %w", EnvChildArgv, err)
	}
	if len(p.Argv) == 0 {
		return p, fmt.Errorf("dexopt: empty child argv")
	}

	lockFD, err := strconv.Atoi(os.Getenv(EnvChildLockFD))
	if err != nil {
		return p, fmt.Errorf("dexopt: bad %s: %w", EnvChildLockFD, err)
	}
	p.LockFD = lockFD
	p.BootComplete = os.Getenv(EnvChildBg) == "1"
	return p, nil
}

// RunChild performs setgid, setuid, capability drop, a lowered nice value
// once boot has completed, flock and finally exec, in that fixed order, and never returns: every
// exit path is an os.Exit with the historical exit code for the failing
// step. It must be called before the runtime has spawned any additional
// OS thread, matching the single-threaded, minimal-import discipline the
// rest of this daemon's privilege-dropping helper uses.
func RunChild(p ChildParams) {
	if err := unix.Setgid(int(p.UID)); err != nil {
		fmt.Fprintf(os.Stderr, "dexopt: setgid(%d) failed: %v\n", p.UID, err)
		os.Exit(ExitSetgidFailed)
	}
	if err := unix.Setuid(int(p.UID)); err != nil {
		fmt.Fprintf(os.Stderr, "dexopt: setuid(%d) failed: %v\n", p.UID, err)
		os.Exit(ExitSetuidFailed)
	}

	if err := dropAllCapabilities(); err != nil {
		fmt.Fprintf(os.Stderr, "dexopt: capset failed: %v\n", err)
		os.Exit(ExitCapsetFailed)
	}

	if p.BootComplete {
		// The original also reassigns the cgroup scheduling policy via
		// libcutils' set_sched_policy, which has no portable Go binding;
		// only the nice-value half of that pair is reproduced here.
		if err := unix.Setpriority(unix.PRIO_PROCESS, 0, 10); err != nil {
			fmt.Fprintf(os.Stderr, "dexopt: setpriority failed: %v\n", err)
			os.Exit(ExitPriorityFailed)
		}
	}

	if err := unix.Flock(p.LockFD, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		fmt.Fprintf(os.Stderr, "dexopt: flock failed: %v\n", err)
		os.Exit(ExitFlockFailed)
	}

	if err := unix.Exec(p.Argv[0], p.Argv, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "dexopt: exec(%s) failed: %v\n", p.Argv[0], err)
	}
	os.Exit(ExitExecFailed)
}

// dropAllCapabilities zeroes the effective, permitted and inheritable
// capability sets, the Go equivalent of a capset() call with an
// all-zero capdata.
func dropAllCapabilities() error {
	c, err := capability.NewPid2(0)
	if err != nil {
		return err
	}
	if err := c.Load(); err != nil {
		return err
	}
	c.Clear(capability.CAPS)
	return c.Apply(capability.CAPS)
}
