//go:build linux

package selinux

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLinuxLabelerRequiresPathToExist(t *testing.T) {
	label := New()
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := label.SetFileCon(present, "com.example", "seinfo", 10001); err != nil {
		t.Fatalf("SetFileCon on existing path: %v", err)
	}
	if err := label.Restorecon(present, RestoreconRecurse); err != nil {
		t.Fatalf("Restorecon on existing path: %v", err)
	}
	if err := label.RestoreconPkgdir(present, "seinfo", 10001, 0); err != nil {
		t.Fatalf("RestoreconPkgdir on existing path: %v", err)
	}

	missing := filepath.Join(dir, "missing")
	if err := label.SetFileCon(missing, "com.example", "seinfo", 10001); err == nil {
		t.Error("expected SetFileCon to fail on a missing path")
	}
	if err := label.Restorecon(missing, 0); err == nil {
		t.Error("expected Restorecon to fail on a missing path")
	}
}
