// Package elog provides the daemon's output and error-wrapping conventions.
package elog

import (
	"log"
	"sync/atomic"
)

// MessageError is an error carrying a separate user-facing message.
type MessageError interface {
	// Message returns a user-facing error message.
	Message() string

	error
}

// GetErrorMessage returns the message of err if it implements [MessageError].
func GetErrorMessage(err error) (string, bool) {
	if e, ok := err.(MessageError); ok && e != nil {
		return e.Message(), true
	}
	return "", false
}

// Msg is the output sink used by every exported operation.
type Msg interface {
	IsVerbose() bool
	Verbose(v ...any)
	Verbosef(format string, v ...any)

	Suspend()
	Resume() bool
	BeforeExit()
}

// DefaultMsg logs to the standard logger and can be muted transiently while a
// child process holds inherited stdio, so the daemon's own log lines cannot
// interleave with the child's.
type DefaultMsg struct {
	verbose  bool
	inactive atomic.Bool
}

// NewMsg returns a [DefaultMsg] with verbose logging set as given.
func NewMsg(verbose bool) *DefaultMsg { return &DefaultMsg{verbose: verbose} }

func (msg *DefaultMsg) IsVerbose() bool { return msg.verbose }

func (msg *DefaultMsg) Verbose(v ...any) {
	if msg.verbose && !msg.inactive.Load() {
		log.Println(v...)
	}
}

func (msg *DefaultMsg) Verbosef(format string, v ...any) {
	if msg.verbose && !msg.inactive.Load() {
		log.Printf(format, v...)
	}
}

// Suspend mutes output, used around fork/exec of a child sharing our stdio.
func (msg *DefaultMsg) Suspend() { msg.inactive.Store(true) }

// Resume unmutes output previously suspended by [DefaultMsg.Suspend].
func (msg *DefaultMsg) Resume() bool { return msg.inactive.CompareAndSwap(true, false) }

func (msg *DefaultMsg) BeforeExit() {}

var output Msg = new(DefaultMsg)

// GetOutput returns the currently active [Msg].
func GetOutput() Msg { return output }

// SetOutput replaces the currently active [Msg].
func SetOutput(v Msg) {
	if v == nil {
		output = new(DefaultMsg)
		return
	}
	output = v
}
