package idmap

import (
	"testing"

	"droid.dev/instd/internal/elog"
)

func TestFlatten(t *testing.T) {
	got, err := Flatten("/data/resource-cache/", "@idmap", "/vendor/overlay/framework-res__auto_generated_rro.apk")
	if err != nil {
		t.Fatal(err)
	}
	want := "/data/resource-cache/vendor@overlay@framework-res__auto_generated_rro.apk@idmap"
	if got != want {
		t.Fatalf("Flatten = %q, want %q", got, want)
	}
}

func TestFlattenRejectsRelative(t *testing.T) {
	if _, err := Flatten(prefix, suffix, "relative/path.apk"); err == nil {
		t.Fatal("expected error for non-absolute overlay path")
	}
}

func TestFlattenRejectsTooShort(t *testing.T) {
	if _, err := Flatten(prefix, suffix, "/"); err == nil {
		t.Fatal("expected error for single-character path")
	}
}

// Run's cache path is always rooted under the fixed resource-cache prefix
// rather than anything test-controllable, so only the early rejection of
// an unflattenable overlay path is exercised here.
func TestRunRejectsInvalidOverlayPath(t *testing.T) {
	o := New("/system/bin/idmap", elog.NewMsg(false))
	if _, err := o.Run("/vendor/app/Target.apk", "relative/overlay.apk", 10001); err == nil {
		t.Fatal("expected an error for a non-absolute overlay path")
	}
}
