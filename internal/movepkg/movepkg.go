// Package movepkg implements move_complete_app: copying a package's
// installed code and per-user data to another storage volume, rolling
// back everything already copied if any step fails.
package movepkg

import (
	"errors"
	"fmt"
	"os/exec"

	"droid.dev/instd/internal/appdata"
	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/elog"
	"droid.dev/instd/internal/fsutil"
	"droid.dev/instd/internal/idspace"
	"droid.dev/instd/internal/instderr"
	"droid.dev/instd/internal/paths"
	"droid.dev/instd/internal/selinux"
	"droid.dev/instd/internal/txn"
)

// Copier runs the cp binary. [New] substitutes [ExecCopier] when given nil.
type Copier func(argv []string) error

// ExecCopier runs argv as a real subprocess, waiting for it to exit.
func ExecCopier(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	return cmd.Run()
}

// Mover copies a package's app and per-user data across volumes.
type Mover struct {
	Paths  *paths.Resolver
	Data   *appdata.Manager
	Label  selinux.Labeler
	CpPath string
	Copy   Copier
	Msg    elog.Msg
}

// New returns a [Mover]. If copy is nil, [ExecCopier] is used.
func New(r *paths.Resolver, data *appdata.Manager, label selinux.Labeler, cpPath string, copy Copier, msg elog.Msg) *Mover {
	if copy == nil {
		copy = ExecCopier
	}
	return &Mover{Paths: r, Data: data, Label: label, CpPath: cpPath, Copy: copy, Msg: msg}
}

// copyAppOp copies the installed code directory and reverts by nuking the
// destination on rollback.
type copyAppOp struct {
	m           *Mover
	from, to    *check.Absolute
	toParentDir *check.Absolute
}

func (o *copyAppOp) String() string {
	return fmt.Sprintf("copy app %s -> %s", o.from.String(), o.to.String())
}

func (o *copyAppOp) Apply() error {
	if err := o.m.Copy(cpArgs(o.m.CpPath, o.from.String(), o.toParentDir.String())); err != nil {
		return instderr.NewPath(instderr.ChildFailure, o.to.String(), err)
	}
	if err := o.m.Label.Restorecon(o.to.String(), selinux.RestoreconRecurse); err != nil {
		return instderr.NewPath(instderr.SELinuxFailure, o.to.String(), err)
	}
	return nil
}

func (o *copyAppOp) Revert() error {
	return fsutil.DeleteContentsAndDir(o.to)
}

// copyUserDataOp creates one user's CE and DE package directories on the
// destination volume and copies that user's CE data directory into place;
// the DE data is not copied. Rollback removes the destination CE directory.
type copyUserDataOp struct {
	m                          *Mover
	uuid                       paths.VolumeUUID
	pkgname                    string
	userid                     idspace.UserID
	appid                      idspace.AppID
	seinfo                     string
	from, to                   *check.Absolute
	toParent, toUserDataRoot   *check.Absolute
}

func (o *copyUserDataOp) String() string {
	return fmt.Sprintf("copy user data %s -> %s", o.from.String(), o.to.String())
}

func (o *copyUserDataOp) Apply() error {
	if !fsutil.Exists(o.from) {
		o.m.Msg.Verbosef("missing source %s, skipping", o.from.String())
		return nil
	}

	if err := fsutil.PrepareDir(o.toUserDataRoot, 0771, 1000, 1000); err != nil {
		return instderr.NewPath(instderr.FilesystemFailure, o.toUserDataRoot.String(), err)
	}
	if err := o.m.Data.Create(o.uuid, o.pkgname, o.userid, idspace.FlagCE|idspace.FlagDE, o.appid, o.seinfo); err != nil {
		return err
	}
	if err := o.m.Copy(cpArgs(o.m.CpPath, o.from.String(), o.toParent.String())); err != nil {
		return instderr.NewPath(instderr.ChildFailure, o.to.String(), err)
	}
	if err := o.m.Data.Restorecon(o.uuid, o.pkgname, o.userid, idspace.FlagCE|idspace.FlagDE, o.appid, o.seinfo); err != nil {
		return err
	}
	return nil
}

func (o *copyUserDataOp) Revert() error {
	return fsutil.DeleteContentsAndDir(o.to)
}

// Move copies dataAppName's installed code from fromUUID to toUUID, then
// copies pkgname's CE data for every user in users, rolling back
// everything already copied if any step fails. Source data is never
// touched; callers delete it only after the framework durably records the
// new location, mirroring installd's own recovery-from-battery-pull
// ordering.
func (m *Mover) Move(fromUUID, toUUID paths.VolumeUUID, pkgname, dataAppName string, appid idspace.AppID, seinfo string, users []idspace.UserID) error {
	t := txn.New(m.Msg)

	appFrom := m.Paths.DataAppPackagePath(fromUUID, dataAppName)
	appTo := m.Paths.DataAppPackagePath(toUUID, dataAppName)
	t.Add(&copyAppOp{m: m, from: appFrom, to: appTo, toParentDir: appTo.Dir()})

	for _, u := range users {
		from := m.Paths.DataUserPackagePath(fromUUID, u, pkgname)
		to := m.Paths.DataUserPackagePath(toUUID, u, pkgname)
		toUserRoot := m.Paths.DataUserPath(toUUID, u)
		t.Add(&copyUserDataOp{
			m: m, uuid: toUUID, pkgname: pkgname, userid: u, appid: appid, seinfo: seinfo,
			from: from, to: to, toParent: toUserRoot, toUserDataRoot: toUserRoot,
		})
	}

	if err := t.Commit(); err != nil {
		return errors.Join(instderr.New(instderr.FilesystemFailure, errors.New("move_complete_app failed")), err)
	}
	return nil
}
