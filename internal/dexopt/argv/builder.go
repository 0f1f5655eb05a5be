// Package argv builds argument vectors for the AOT toolchain binaries in
// the exact conditional order the original compiler driver constructed
// them, so callers see the same flags in the same positions.
package argv

import "fmt"

// Builder accumulates argv elements, mirroring the len/append idiom used
// for other ordered command-line constructions in this codebase.
type Builder struct {
	argv []string
}

// New returns a [Builder] seeded with prog as argv[0].
func New(prog string) *Builder { return &Builder{argv: []string{prog}} }

// Add appends a literal argument.
func (b *Builder) Add(s string) *Builder {
	b.argv = append(b.argv, s)
	return b
}

// Addf appends a formatted argument.
func (b *Builder) Addf(format string, a ...any) *Builder {
	return b.Add(fmt.Sprintf(format, a...))
}

// AddIf appends s only when cond is true.
func (b *Builder) AddIf(cond bool, s string) *Builder {
	if cond {
		b.Add(s)
	}
	return b
}

// AddPropIf appends a formatted argument only when ok is true, the pattern
// used for every optional property-derived flag.
func (b *Builder) AddPropIf(ok bool, format string, a ...any) *Builder {
	if ok {
		b.Addf(format, a...)
	}
	return b
}

// AddPair appends flag followed by value unconditionally, used for
// "--runtime-arg X" style two-token flags.
func (b *Builder) AddPair(flag, value string) *Builder {
	return b.Add(flag).Add(value)
}

// AddPairIf appends flag followed by value only when cond is true.
func (b *Builder) AddPairIf(cond bool, flag, value string) *Builder {
	if cond {
		b.AddPair(flag, value)
	}
	return b
}

// AddAll appends every element of extra in order.
func (b *Builder) AddAll(extra []string) *Builder {
	b.argv = append(b.argv, extra...)
	return b
}

// Len reports the number of argv elements accumulated so far.
func (b *Builder) Len() int { return len(b.argv) }

// Argv returns the accumulated argv, program name included.
func (b *Builder) Argv() []string { return b.argv }
