package elog

import (
	"fmt"
	"log"
	"strings"
)

// baseError implements a basic error container.
type baseError struct{ err error }

func (e *baseError) Error() string { return e.err.Error() }
func (e *baseError) Unwrap() error { return e.err }

// BaseError implements an error container with a user-facing message.
type BaseError struct {
	message string
	baseError
}

// Message returns a user-facing error message.
func (e *BaseError) Message() string { return e.message }

// WrapErr wraps err with a corresponding message.
func WrapErr(err error, a ...any) error {
	if err == nil {
		return nil
	}
	return wrapErr(err, fmt.Sprintln(a...))
}

// WrapErrSuffix wraps err with a message ending in err's own text.
func WrapErrSuffix(err error, a ...any) error {
	if err == nil {
		return nil
	}
	return wrapErr(err, fmt.Sprintln(append(a, err)...))
}

// WrapErrFunc wraps err with the message returned by f.
func WrapErrFunc(err error, f func(err error) string) error {
	if err == nil {
		return nil
	}
	return wrapErr(err, f(err))
}

func wrapErr(err error, message string) *BaseError {
	return &BaseError{strings.TrimRight(message, "\n"), baseError{err}}
}

// AsBaseError returns whether err is a [*BaseError] and assigns it to target.
func AsBaseError(err error, target **BaseError) bool {
	e, ok := err.(*BaseError)
	if !ok {
		return false
	}
	*target = e
	return true
}

// PrintBaseError prints err's user-facing message if it carries one. A
// [*BaseError] with an empty message is reported only as a verbose line
// through [GetOutput]; any other error prints fallback followed by err.
func PrintBaseError(err error, fallback string) {
	var e *BaseError
	if AsBaseError(err, &e) {
		if msg := strings.TrimSpace(e.Message()); msg != "" {
			log.Print(msg)
			return
		}
		GetOutput().Verbose("*"+fallback, err)
		return
	}
	log.Println(fallback, err)
}
