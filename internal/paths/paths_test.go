package paths

import (
	"testing"

	"droid.dev/instd/internal/check"
	"droid.dev/instd/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		DataRoot:      check.MustAbs("/data"),
		AsecMountRoot: check.MustAbs("/mnt/asec"),
	}
}

func TestVolumeUUIDIsInternal(t *testing.T) {
	if !VolumeUUID("").IsInternal() {
		t.Error("empty uuid should be internal")
	}
	if !VolumeUUID("primary_physical").IsInternal() {
		t.Error("primary_physical should be internal")
	}
	if VolumeUUID("abcd-1234").IsInternal() {
		t.Error("adoptable uuid should not be internal")
	}
}

func TestDataUserPathPrimaryUserInternal(t *testing.T) {
	r := New(testConfig())
	got := r.DataUserPath("", 0).String()
	if got != "/data/data" {
		t.Fatalf("DataUserPath(internal, 0) = %q, want /data/data", got)
	}
}

func TestDataUserPathSecondaryUser(t *testing.T) {
	r := New(testConfig())
	got := r.DataUserPath("", 10).String()
	if got != "/data/user/10" {
		t.Fatalf("DataUserPath(internal, 10) = %q, want /data/user/10", got)
	}
}

func TestDataUserPathAdoptableVolume(t *testing.T) {
	r := New(testConfig())
	got := r.DataUserPath("abcd-1234", 0).String()
	if got != "/mnt/expand/abcd-1234/user/0" {
		t.Fatalf("DataUserPath(adoptable, 0) = %q, want /mnt/expand/abcd-1234/user/0", got)
	}
}

func TestDataUserDePackagePath(t *testing.T) {
	r := New(testConfig())
	got := r.DataUserDePackagePath("", 0, "com.example").String()
	if got != "/data/user_de/0/com.example" {
		t.Fatalf("got %q", got)
	}
}

func TestDalvikCachePathFlattens(t *testing.T) {
	r := New(testConfig())
	got := r.DalvikCachePath("arm64", "/data/app/com.example-1/base.apk", ".dex").String()
	want := "/data/dalvik-cache/arm64/@data@app@com.example-1@base.apk.dex"
	if got != want {
		t.Fatalf("DalvikCachePath = %q, want %q", got, want)
	}
}

func TestValidatorAcceptsDescendant(t *testing.T) {
	v := NewValidator(check.MustAbs("/data/user"))
	if err := v.Check(check.MustAbs("/data/user/0/com.example")); err != nil {
		t.Fatalf("expected descendant to pass, got %v", err)
	}
}

func TestValidatorRejectsOutsideRoots(t *testing.T) {
	v := NewValidator(check.MustAbs("/data/user"))
	if err := v.Check(check.MustAbs("/data/userdata/evil")); err == nil {
		t.Fatal("expected rejection of path with shared string prefix but not a real descendant")
	}
	if err := v.Check(check.MustAbs("/etc/passwd")); err == nil {
		t.Fatal("expected rejection of unrelated path")
	}
}

func TestDefaultValidatorPermitsWellKnownRoots(t *testing.T) {
	v := DefaultValidator(testConfig())
	for _, p := range []string{
		"/data/user/0/com.example",
		"/data/user_de/0/com.example",
		"/data/app/com.example-1",
		"/data/media/0/Pictures",
		"/data/dalvik-cache/arm64/foo.dex",
		"/mnt/asec/com.example-1",
	} {
		if err := v.Check(check.MustAbs(p)); err != nil {
			t.Errorf("expected %q to be permitted, got %v", p, err)
		}
	}
}
