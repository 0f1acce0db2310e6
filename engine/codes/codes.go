// Package codes defines the engine's stable error-code enumeration and
// the *Error type every operation reports failures through, per
// spec.md §6 "Error codes". Codes are negative so they never collide
// with a platform errno a future caller might want to fold in alongside
// them.
package codes

import (
	"errors"
	"fmt"
)

// Code is one of the engine's stable error codes.
type Code int

const (
	// Invalid parameter.
	BadGraph Code = -(iota + 1)
	BadKillSwitch
	BadClass
	BadPartition

	// Inconsistent specification.
	ContradictoryConnector
	ContradictoryMutation
	TypeMismatch

	// Interruption.
	Interrupted
	CapExceeded
	Deadlock
	OutOfContext

	// Null required parameter.
	NullRequiredParameter

	// Partitioning.
	DuplicateVertex
	VertexNotFound

	// Type conflict.
	TypeConflict

	// Undefined required callback.
	UndefinedCallback

	// Reserved ranges: AssertionFailed for internal invariant
	// violations, TestHarnessFailure for faults injected by test
	// tooling (see engine.WithAllocTestHook).
	AssertionFailed
	TestHarnessFailure
)

var names = map[Code]string{
	BadGraph:               "bad graph",
	BadKillSwitch:          "bad kill switch",
	BadClass:               "bad class",
	BadPartition:           "bad partition",
	ContradictoryConnector: "contradictory connector",
	ContradictoryMutation:  "contradictory mutation plan",
	TypeMismatch:           "contradictory types",
	Interrupted:            "interrupted",
	CapExceeded:            "vertex cap exceeded",
	Deadlock:               "deadlock detected",
	OutOfContext:           "called out of context",
	NullRequiredParameter:  "null required parameter",
	DuplicateVertex:        "duplicate vertex",
	VertexNotFound:         "vertex not found",
	TypeConflict:           "type conflict",
	UndefinedCallback:      "undefined required callback",
	AssertionFailed:        "internal assertion failed",
	TestHarnessFailure:     "test harness failure",
}

// String renders a human-readable name for the code.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is the error type every engine entry point returns its first
// failure as.
type Error struct {
	Code Code
	msg  string
	err  error
}

// New creates an *Error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, msg: msg}
}

// Newf creates an *Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given code that wraps a lower-level
// cause, usually from a client callback.
func Wrap(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, msg: err.Error(), err: err}
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is lets errors.Is(err, codes.New(codes.Interrupted, "")) match any
// *Error carrying the same code, whatever its message; the target must
// itself be an *Error, not a bare Code value.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Of extracts the Code from err, or 0 if err is nil or not one of
// ours.
func Of(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
