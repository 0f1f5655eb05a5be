package instderr

import (
	"errors"
	"testing"
)

func TestErrorMessageIncludesPath(t *testing.T) {
	cause := errors.New("boom")
	err := NewPath(FilesystemFailure, "/data/user/0/com.example", cause)
	want := "filesystem failure: /data/user/0/com.example: boom"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestErrorMessageOmitsEmptyPath(t *testing.T) {
	err := New(InvalidArgument, errors.New("bad input"))
	want := "invalid argument: bad input"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := New(ChildFailure, cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to see through Unwrap")
	}
}

func TestKindStringUnknown(t *testing.T) {
	if got := Kind(99).String(); got != "unknown failure" {
		t.Fatalf("Kind(99).String() = %q, want %q", got, "unknown failure")
	}
}
