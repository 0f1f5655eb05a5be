// Package check provides types yielding values checked to meet a condition
// at construction time, so an invalid value cannot flow into a syscall.
package check

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"syscall"
)

// AbsoluteError is returned by [NewAbs] and holds the invalid pathname.
type AbsoluteError struct{ Pathname string }

func (e *AbsoluteError) Error() string { return fmt.Sprintf("path %q is not absolute", e.Pathname) }
func (e *AbsoluteError) Is(target error) bool {
	var ce *AbsoluteError
	if !errors.As(target, &ce) {
		return errors.Is(target, syscall.EINVAL)
	}
	return *e == *ce
}

// Absolute holds a pathname checked to be absolute and clean.
type Absolute struct{ pathname string }

func unsafeAbs(pathname string) *Absolute { return &Absolute{pathname} }

func (a *Absolute) String() string {
	if a.pathname == "" {
		panic("attempted use of zero Absolute")
	}
	return a.pathname
}

// Is reports whether a and v hold the same pathname.
func (a *Absolute) Is(v *Absolute) bool {
	if a == nil && v == nil {
		return true
	}
	return a != nil && v != nil && a.pathname != "" && v.pathname != "" && a.pathname == v.pathname
}

// HasPrefix reports whether a's pathname is prefix or a descendant of it.
func (a *Absolute) HasPrefix(prefix *Absolute) bool {
	if a == nil || prefix == nil {
		return false
	}
	p := prefix.pathname
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	return a.pathname == p || strings.HasPrefix(a.pathname, p+"/")
}

// NewAbs checks pathname and returns a new [Absolute] if pathname is absolute.
func NewAbs(pathname string) (*Absolute, error) {
	if !path.IsAbs(pathname) {
		return nil, &AbsoluteError{pathname}
	}
	return unsafeAbs(path.Clean(pathname)), nil
}

// MustAbs calls [NewAbs] and panics on error.
func MustAbs(pathname string) *Absolute {
	a, err := NewAbs(pathname)
	if err != nil {
		panic(err)
	}
	return a
}

// Append calls [path.Join] with [Absolute] as the first element.
func (a *Absolute) Append(elem ...string) *Absolute {
	return unsafeAbs(path.Join(append([]string{a.String()}, elem...)...))
}

// Dir calls [path.Dir] with [Absolute] as its argument.
func (a *Absolute) Dir() *Absolute { return unsafeAbs(path.Dir(a.String())) }

// Base calls [path.Base] with [Absolute] as its argument.
func (a *Absolute) Base() string { return path.Base(a.String()) }

func (a *Absolute) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }
func (a *Absolute) UnmarshalJSON(data []byte) error {
	var pathname string
	if err := json.Unmarshal(data, &pathname); err != nil {
		return err
	}
	if !path.IsAbs(pathname) {
		return &AbsoluteError{pathname}
	}
	a.pathname = path.Clean(pathname)
	return nil
}
