package idspace

import "testing"

func TestUid(t *testing.T) {
	uid, err := Uid(0, 10123)
	if err != nil {
		t.Fatal(err)
	}
	if uid != 10123 {
		t.Fatalf("Uid(0, 10123) = %d, want 10123", uid)
	}

	uid, err = Uid(10, 10123)
	if err != nil {
		t.Fatal(err)
	}
	if uid != 1010123 {
		t.Fatalf("Uid(10, 10123) = %d, want 1010123", uid)
	}
}

func TestUidRejectsOutOfRangeAppID(t *testing.T) {
	if _, err := Uid(0, userOffset); err == nil {
		t.Fatal("expected error for out of range app id")
	}
}

func TestCacheGid(t *testing.T) {
	gid, err := CacheGid(0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if gid != CacheGidStart+5 {
		t.Fatalf("CacheGid(0, 5) = %d, want %d", gid, CacheGidStart+5)
	}
}

func TestStorageFlagsString(t *testing.T) {
	cases := []struct {
		f    StorageFlags
		want string
	}{
		{0, "none"},
		{FlagCE, "CE"},
		{FlagDE, "DE"},
		{FlagCE | FlagDE, "CE|DE"},
	}
	for _, c := range cases {
		if got := c.f.String(); got != c.want {
			t.Errorf("StorageFlags(%d).String() = %q, want %q", c.f, got, c.want)
		}
	}
}

func TestStorageFlagsHas(t *testing.T) {
	f := FlagCE | FlagDE
	if !f.Has(FlagCE) || !f.Has(FlagDE) || !f.Has(FlagCE|FlagDE) {
		t.Fatal("combined flags should report having each component")
	}
	if FlagCE.Has(FlagDE) {
		t.Fatal("FlagCE must not report having FlagDE")
	}
}
